package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	// Relay
	validRelayModes := []string{"direct", "gateway"}
	if cfg.Relay.Mode != "" && !slices.Contains(validRelayModes, cfg.Relay.Mode) {
		add("relay.mode", "must be one of %v, got %q", validRelayModes, cfg.Relay.Mode)
	}
	if cfg.Relay.Mode == "gateway" && cfg.Relay.GatewayURL == "" {
		add("relay.gatewayUrl", "required when relay.mode is gateway")
	}
	for _, field := range []struct{ path, value string }{
		{"relay.gatewayUrl", cfg.Relay.GatewayURL},
		{"relay.openaiBaseUrl", cfg.Relay.OpenAIBaseURL},
		{"relay.anthropicBaseUrl", cfg.Relay.AnthropicBaseURL},
	} {
		if field.value == "" {
			continue
		}
		if u, err := url.Parse(field.value); err != nil || u.Scheme == "" || u.Host == "" {
			add(field.path, "must be an absolute URL, got %q", field.value)
		}
	}
	if cfg.Relay.MaxTokens < 0 {
		add("relay.maxTokens", "must not be negative, got %d", cfg.Relay.MaxTokens)
	}
	validProviders := []string{"openai", "anthropic"}
	for prefix, provider := range cfg.Relay.Aliases {
		if !slices.Contains(validProviders, provider) {
			add("relay.aliases."+prefix, "must be one of %v, got %q", validProviders, provider)
		}
	}

	// Pipeline
	if cfg.Pipeline.PauseMs != nil && *cfg.Pipeline.PauseMs < 0 {
		add("pipeline.pauseMs", "must not be negative, got %d", *cfg.Pipeline.PauseMs)
	}
	if cfg.Pipeline.AgentTimeoutSeconds < 0 {
		add("pipeline.agentTimeoutSeconds", "must not be negative, got %d", cfg.Pipeline.AgentTimeoutSeconds)
	}

	// Gateway
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		add("gateway.port", "port must be 0-65535, got %d", cfg.Gateway.Port)
	}
	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		add("gateway.bind", "must be one of %v, got %q", validBinds, cfg.Gateway.Bind)
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		add("gateway.customBindHost", "required when gateway.bind is custom")
	}
	validAuthModes := []string{"none", "token", "password"}
	if cfg.Gateway.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Gateway.Auth.Mode) {
		add("gateway.auth.mode", "must be one of %v, got %q", validAuthModes, cfg.Gateway.Auth.Mode)
	}
	if cfg.Gateway.TLS.Enabled && (cfg.Gateway.TLS.CertPath == "" || cfg.Gateway.TLS.KeyPath == "") {
		add("gateway.tls", "certPath and keyPath are required when TLS is enabled")
	}

	// Logging
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", validLogLevels, cfg.Logging.Level)
	}
	validConsoleStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		add("logging.consoleStyle", "must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle)
	}

	// Hooks
	for event, entries := range map[string][]HookEntry{
		"runStart":     cfg.Hooks.RunStart,
		"runComplete":  cfg.Hooks.RunComplete,
		"runFailed":    cfg.Hooks.RunFailed,
		"gatewayStart": cfg.Hooks.GatewayStart,
		"gatewayStop":  cfg.Hooks.GatewayStop,
	} {
		for i, e := range entries {
			if e.Command == "" {
				add(fmt.Sprintf("hooks.%s[%d].command", event, i), "command is required")
			}
		}
	}

	return issues
}
