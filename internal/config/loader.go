package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

func expandSensitiveFields(cfg *Config) {
	cfg.Gateway.Auth.Token = expandEnvVars(cfg.Gateway.Auth.Token)
	cfg.Gateway.Auth.Password = expandEnvVars(cfg.Gateway.Auth.Password)
	cfg.Relay.GatewayURL = expandEnvVars(cfg.Relay.GatewayURL)
	cfg.Relay.OpenAIBaseURL = expandEnvVars(cfg.Relay.OpenAIBaseURL)
	cfg.Relay.AnthropicBaseURL = expandEnvVars(cfg.Relay.AnthropicBaseURL)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields left empty by a partial file.
func applyDefaults(cfg *Config) {
	if cfg.Relay.Mode == "" {
		cfg.Relay.Mode = "direct"
	}
	if cfg.Relay.Model == "" {
		cfg.Relay.Model = DefaultModel
	}
	if cfg.Relay.MaxTokens == 0 {
		cfg.Relay.MaxTokens = DefaultMaxTokens
	}
	if cfg.Pipeline.PauseMs == nil {
		pause := DefaultPauseMs
		cfg.Pipeline.PauseMs = &pause
	}
	if cfg.Pipeline.AgentTimeoutSeconds == 0 {
		cfg.Pipeline.AgentTimeoutSeconds = DefaultAgentTimeoutSeconds
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultGatewayPort
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "loopback"
	}
	if cfg.Gateway.Auth.Mode == "" {
		cfg.Gateway.Auth.Mode = "none"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads BOARDROOM_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOARDROOM_MODEL"); v != "" {
		cfg.Relay.Model = v
	}
	if v := os.Getenv("BOARDROOM_RELAY_MODE"); v != "" {
		cfg.Relay.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("BOARDROOM_GATEWAY_URL"); v != "" {
		cfg.Relay.GatewayURL = v
	}
	if v := os.Getenv("BOARDROOM_OPENAI_BASE_URL"); v != "" {
		cfg.Relay.OpenAIBaseURL = v
	}
	if v := os.Getenv("BOARDROOM_PAUSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Pipeline.PauseMs = &ms
		}
	}
	if v := os.Getenv("BOARDROOM_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("BOARDROOM_GATEWAY_BIND"); v != "" {
		cfg.Gateway.Bind = v
	}
	if v := os.Getenv("BOARDROOM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
