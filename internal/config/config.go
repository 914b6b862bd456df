package config

import (
	"fmt"
	"time"
)

const (
	DefaultModel               = "gpt-4o"
	DefaultGatewayPort         = 18790
	DefaultPauseMs             = 1000
	DefaultAgentTimeoutSeconds = 300
	DefaultMaxTokens           = 4096
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	pause := DefaultPauseMs
	return Config{
		Relay: RelayConfig{
			Mode:      "direct",
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
		Pipeline: PipelineConfig{
			PauseMs:             &pause,
			AgentTimeoutSeconds: DefaultAgentTimeoutSeconds,
		},
		Gateway: GatewayConfig{
			Port: DefaultGatewayPort,
			Bind: "loopback",
			Auth: GatewayAuth{Mode: "none"},
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// Pause returns the inter-agent pause.
func (p PipelineConfig) Pause() time.Duration {
	if p.PauseMs == nil {
		return DefaultPauseMs * time.Millisecond
	}
	return time.Duration(*p.PauseMs) * time.Millisecond
}

// AgentTimeout returns the per-agent relay timeout. Zero disables it.
func (p PipelineConfig) AgentTimeout() time.Duration {
	return time.Duration(p.AgentTimeoutSeconds) * time.Second
}
