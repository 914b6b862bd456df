package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []ValidationIssue) []string {
	var paths []string
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	return paths
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidateSingleIssues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"relay mode", func(c *Config) { c.Relay.Mode = "carrier-pigeon" }, "relay.mode"},
		{"gateway mode without url", func(c *Config) { c.Relay.Mode = "gateway" }, "relay.gatewayUrl"},
		{"relative gateway url", func(c *Config) { c.Relay.GatewayURL = "localhost" }, "relay.gatewayUrl"},
		{"bad openai url", func(c *Config) { c.Relay.OpenAIBaseURL = "::nope" }, "relay.openaiBaseUrl"},
		{"negative max tokens", func(c *Config) { c.Relay.MaxTokens = -1 }, "relay.maxTokens"},
		{"unknown alias provider", func(c *Config) { c.Relay.Aliases = map[string]string{"x-": "gemini"} }, "relay.aliases.x-"},
		{"negative pause", func(c *Config) { p := -5; c.Pipeline.PauseMs = &p }, "pipeline.pauseMs"},
		{"negative timeout", func(c *Config) { c.Pipeline.AgentTimeoutSeconds = -1 }, "pipeline.agentTimeoutSeconds"},
		{"port", func(c *Config) { c.Gateway.Port = 99999 }, "gateway.port"},
		{"bind", func(c *Config) { c.Gateway.Bind = "tailnet" }, "gateway.bind"},
		{"custom bind host", func(c *Config) { c.Gateway.Bind = "custom" }, "gateway.customBindHost"},
		{"auth mode", func(c *Config) { c.Gateway.Auth.Mode = "oauth" }, "gateway.auth.mode"},
		{"tls paths", func(c *Config) { c.Gateway.TLS.Enabled = true }, "gateway.tls"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"console style", func(c *Config) { c.Logging.ConsoleStyle = "fancy" }, "logging.consoleStyle"},
		{"hook command", func(c *Config) { c.Hooks.RunFailed = []HookEntry{{}} }, "hooks.runFailed[0].command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			require.Len(t, issues, 1, "issues: %v", issues)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestValidateGatewayRelay(t *testing.T) {
	cfg := Defaults()
	cfg.Relay.Mode = "gateway"
	cfg.Relay.GatewayURL = "http://127.0.0.1:18790"
	assert.Empty(t, Validate(&cfg))
}

func TestValidateCollectsMultipleIssues(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Port = -1
	cfg.Logging.Level = "verbose"

	paths := issuePaths(Validate(&cfg))
	assert.ElementsMatch(t, []string{"gateway.port", "logging.level"}, paths)
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "relay.mode", Message: "bad"}
	assert.Equal(t, "relay.mode: bad", issue.String())
}
