package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsCustomHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("BOARDROOM_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, tmp, paths.Base)
	assert.Equal(t, filepath.Join(tmp, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(tmp, "logs", "boardroom.log"), paths.LogFile())
}

func TestEnsureDirs(t *testing.T) {
	t.Setenv("BOARDROOM_HOME", filepath.Join(t.TempDir(), "nested"))

	paths, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirs())

	for _, d := range []string{paths.Base, paths.Logs} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "relay", []string{"relay"}, false},
		{"two segments", "relay.model", []string{"relay", "model"}, false},
		{"three segments", "gateway.auth.mode", []string{"gateway", "auth", "mode"}, false},
		{"empty", "", nil, true},
		{"empty segment", "gateway..port", nil, true},
		{"leading dot", ".gateway", nil, true},
		{"trailing dot", "gateway.", nil, true},
		{"blocked key", "foo.__proto__.bar", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSetUnsetValueAtPath(t *testing.T) {
	root := map[string]any{
		"pipeline": map[string]any{"pauseMs": 1000},
		"simple":   "value",
	}

	val, ok := GetValueAtPath(root, []string{"pipeline", "pauseMs"})
	assert.True(t, ok)
	assert.Equal(t, 1000, val)

	_, ok = GetValueAtPath(root, []string{"simple", "sub"})
	assert.False(t, ok)

	SetValueAtPath(root, []string{"relay", "aliases", "claude-"}, "anthropic")
	val, ok = GetValueAtPath(root, []string{"relay", "aliases", "claude-"})
	assert.True(t, ok)
	assert.Equal(t, "anthropic", val)

	SetValueAtPath(root, []string{"simple", "nested"}, 1)
	val, ok = GetValueAtPath(root, []string{"simple", "nested"})
	assert.True(t, ok)
	assert.Equal(t, 1, val)

	assert.True(t, UnsetValueAtPath(root, []string{"pipeline", "pauseMs"}))
	_, ok = GetValueAtPath(root, []string{"pipeline", "pauseMs"})
	assert.False(t, ok)
	assert.False(t, UnsetValueAtPath(root, []string{"pipeline", "pauseMs"}))
	assert.False(t, UnsetValueAtPath(root, []string{"missing", "key"}))
}
