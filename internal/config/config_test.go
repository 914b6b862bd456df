package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "direct", cfg.Relay.Mode)
	assert.Equal(t, "gpt-4o", cfg.Relay.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.Relay.MaxTokens)
	assert.Equal(t, time.Second, cfg.Pipeline.Pause())
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.AgentTimeout())
	assert.Equal(t, DefaultGatewayPort, cfg.Gateway.Port)
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, "none", cfg.Gateway.Auth.Mode)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestPauseNilUsesDefault(t *testing.T) {
	var p PipelineConfig
	assert.Equal(t, time.Second, p.Pause())

	zero := 0
	p.PauseMs = &zero
	assert.Equal(t, time.Duration(0), p.Pause())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultGatewayPort, cfg.Gateway.Port)
	assert.Equal(t, "gpt-4o", cfg.Relay.Model)
}

func TestLoadValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	yaml := `
relay:
  mode: gateway
  model: claude-sonnet-4-5
  gatewayUrl: http://127.0.0.1:9000
  aliases:
    mistral-: openai
pipeline:
  pauseMs: 0
  agentTimeoutSeconds: 30
gateway:
  port: 9999
  bind: lan
  auth:
    mode: token
    token: abc
logging:
  level: debug
  consoleStyle: json
hooks:
  runComplete:
    - command: "echo done"
      timeout: 500
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gateway", cfg.Relay.Mode)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Relay.Model)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.Relay.GatewayURL)
	assert.Equal(t, map[string]string{"mistral-": "openai"}, cfg.Relay.Aliases)
	assert.Equal(t, DefaultMaxTokens, cfg.Relay.MaxTokens)
	assert.Equal(t, time.Duration(0), cfg.Pipeline.Pause())
	assert.Equal(t, 30*time.Second, cfg.Pipeline.AgentTimeout())
	assert.Equal(t, 9999, cfg.Gateway.Port)
	assert.Equal(t, "lan", cfg.Gateway.Bind)
	assert.Equal(t, "token", cfg.Gateway.Auth.Mode)
	assert.Equal(t, "abc", cfg.Gateway.Auth.Token)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
	require.Len(t, cfg.Hooks.RunComplete, 1)
	assert.Equal(t, "echo done", cfg.Hooks.RunComplete[0].Command)
	assert.Equal(t, 500, cfg.Hooks.RunComplete[0].Timeout)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "gpt-4o", cfg.Relay.Model)
	assert.Equal(t, time.Second, cfg.Pipeline.Pause())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOARDROOM_GATEWAY_PORT", "12345")
	t.Setenv("BOARDROOM_LOG_LEVEL", "TRACE")
	t.Setenv("BOARDROOM_MODEL", "gpt-4o-mini")
	t.Setenv("BOARDROOM_PAUSE_MS", "250")
	t.Setenv("BOARDROOM_RELAY_MODE", "Gateway")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Gateway.Port)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "gpt-4o-mini", cfg.Relay.Model)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.Pause())
	assert.Equal(t, "gateway", cfg.Relay.Mode)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_GW_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  auth:\n    mode: token\n    token: ${TEST_GW_TOKEN}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Gateway.Auth.Token)
}

func TestExpandEnvVarsLeavesUnsetAlone(t *testing.T) {
	assert.Equal(t, "${BOARDROOM_SURELY_UNSET_VAR}", expandEnvVars("${BOARDROOM_SURELY_UNSET_VAR}"))
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw := map[string]any{
		"relay": map[string]any{"model": "gpt-4o-mini"},
	}
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"relay", "model"})
	assert.True(t, ok)
	assert.Equal(t, "gpt-4o-mini", val)
}

func TestLoadRawMissingFile(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
