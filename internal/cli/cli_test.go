package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/gateway"
	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/pipeline"
	"github.com/soyeahso/boardroom/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BOARDROOM_HOME", t.TempDir())
	t.Setenv(apiKeyEnv, "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "silent"))
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// upstream serves /api/chat with reply, or fails every request when reply
// is empty.
func upstream(t *testing.T, reply string) string {
	t.Helper()
	r := relay.Func(func(ctx context.Context, req relay.Request) (<-chan relay.Fragment, error) {
		out := make(chan relay.Fragment, 1)
		if reply == "" {
			out <- relay.Fragment{Err: &relay.Failure{Message: "upstream returned 503"}}
		} else {
			out <- relay.Fragment{Text: reply}
		}
		close(out)
		return out, nil
	})
	srv := gateway.New(config.Defaults(), logging.Nop(), gateway.WithRelay(r))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func gatewayConfig(t *testing.T, url string) string {
	return writeConfig(t, "relay:\n  mode: gateway\n  gatewayUrl: "+url+"\npipeline:\n  pauseMs: 0\n")
}

func TestRunStreamsMeeting(t *testing.T) {
	cfg := gatewayConfig(t, upstream(t, "Agreed."))

	out, err := execute(t, "run", "--config", cfg, "--api-key", "valid-key", "A", "subscription", "service", "for", "fresh", "air")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Initial Idea: A subscription service for fresh air\n"))
	assert.Equal(t, 5, strings.Count(out, "Agreed."))
	for _, def := range persona.Default().All() {
		assert.Contains(t, out, "--- "+def.Archetype.Icon()+" "+def.Name+" ("+def.Role+") ---")
	}
	assert.Less(t, strings.Index(out, "Masayoshi Son"), strings.Index(out, "Warren Buffett"))
	assert.Contains(t, out, "Meeting adjourned after 5 proposals.")
}

func TestRunReadsKeyFromEnv(t *testing.T) {
	cfg := gatewayConfig(t, upstream(t, "Agreed."))

	t.Setenv("BOARDROOM_HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "--config", cfg, "--log-level", "silent", "--idea", "Robot baristas"})
	t.Setenv(apiKeyEnv, "env-key")

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Initial Idea: Robot baristas")
}

func TestRunJSON(t *testing.T) {
	cfg := gatewayConfig(t, upstream(t, "Agreed."))

	out, err := execute(t, "run", "--config", cfg, "--api-key", "k", "--json", "--idea", "Fresh air")
	require.NoError(t, err)

	var snap struct {
		Status  string `json:"status"`
		Seed    string `json:"seed"`
		Context string `json:"context"`
		Entries []struct {
			AgentID string `json:"agentId"`
			Content string `json:"content"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "completed", snap.Status)
	assert.Equal(t, "Fresh air", snap.Seed)
	require.Len(t, snap.Entries, 5)
	assert.Equal(t, "son", snap.Entries[0].AgentID)
	assert.Equal(t, "buffett", snap.Entries[4].AgentID)
	assert.True(t, strings.HasPrefix(snap.Context, "Initial Idea: Fresh air"))
	assert.Equal(t, 5, strings.Count(snap.Context, "--- Proposal by "))
}

func TestRunMissingKey(t *testing.T) {
	cfg := gatewayConfig(t, upstream(t, "never"))

	_, err := execute(t, "run", "--config", cfg, "--idea", "Fresh air")
	require.ErrorIs(t, err, pipeline.ErrMissingCredential)
	assert.Contains(t, err.Error(), apiKeyEnv)
}

func TestRunEmptyIdeaShowsHelp(t *testing.T) {
	cfg := gatewayConfig(t, upstream(t, "never"))

	out, err := execute(t, "run", "--config", cfg, "--api-key", "k", "--idea", "   ")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.NotContains(t, out, "Initial Idea")
}

func TestRunRelayFailure(t *testing.T) {
	cfg := gatewayConfig(t, upstream(t, ""))

	out, err := execute(t, "run", "--config", cfg, "--api-key", "k", "--idea", "Fresh air")
	require.Error(t, err)
	assert.ErrorIs(t, err, relay.ErrRelayFailure)
	assert.Contains(t, err.Error(), "meeting failed: agent son")
	assert.NotContains(t, out, "Meeting adjourned")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "relay:\n  mode: carrier-pigeon\n")

	_, err := execute(t, "run", "--config", cfg, "--api-key", "k", "--idea", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestPersonasList(t *testing.T) {
	out, err := execute(t, "personas", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for i, id := range []string{"son", "thiel", "jobs", "bezos", "buffett"} {
		assert.Contains(t, lines[i], id)
	}
}

func TestPersonasInfo(t *testing.T) {
	out, err := execute(t, "personas", "info", "jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "Steve Jobs")
	assert.Contains(t, out, "Product / Experience")
	assert.Contains(t, out, "Output Format")

	_, err = execute(t, "personas", "info", "musk")
	assert.ErrorIs(t, err, persona.ErrNotFound)
}

func TestConfigSetGetUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "set", "relay.model", "gpt-4o", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "Set relay.model = gpt-4o\n", out)

	_, err = execute(t, "config", "set", "pipeline.pauseMs", "250", "--config", path)
	require.NoError(t, err)

	out, err = execute(t, "config", "get", "relay.model", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o\n", out)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, *cfg.Pipeline.PauseMs)

	out, err = execute(t, "config", "get", "relay", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "model: gpt-4o")

	_, err = execute(t, "config", "unset", "relay.model", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "config", "get", "relay.model", "--config", path)
	assert.ErrorContains(t, err, "not found")
}

func TestConfigSetRefusesCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	for _, key := range []string{"relay.apiKey", "api_key", "relay.api.key"} {
		_, err := execute(t, "config", "set", key, "sk-secret", "--config", path)
		assert.ErrorIs(t, err, errCredentialKey, key)
	}
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing written")
}

func TestConfigValidate(t *testing.T) {
	good := writeConfig(t, "gateway:\n  port: 9000\n")
	out, err := execute(t, "config", "validate", "--config", good)
	require.NoError(t, err)
	assert.Equal(t, "Config OK\n", out)

	bad := writeConfig(t, "gateway:\n  bind: everywhere\nlogging:\n  level: loud\n")
	out, err = execute(t, "config", "validate", "--config", bad)
	assert.ErrorContains(t, err, "2 issue(s)")
	assert.Contains(t, out, "gateway.bind")
	assert.Contains(t, out, "logging.level")
}

func TestConfigPath(t *testing.T) {
	out, err := execute(t, "config", "path", "--config", "/tmp/elsewhere.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.yaml\n", out)
}

func TestStatus(t *testing.T) {
	cfg := writeConfig(t, "gateway:\n  port: 9000\nhooks:\n  runComplete:\n    - command: \"true\"\n")

	out, err := execute(t, "status", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Relay:    direct (anthropic, openai)")
	assert.Contains(t, out, "API key:  not set")
	assert.Contains(t, out, "son → thiel → jobs → bezos → buffett")
	assert.Contains(t, out, "Gateway:  port=9000 bind=loopback auth=none")
	assert.Contains(t, out, "Hooks:    1 command(s) on run_complete")
	assert.NotContains(t, out, "Validation issues")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "boardroom dev"))
}
