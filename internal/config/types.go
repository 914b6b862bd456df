package config

// Config is the root configuration for boardroom.
// Credentials are never part of it; the API key lives only in process memory.
type Config struct {
	Relay    RelayConfig    `yaml:"relay,omitempty"`
	Pipeline PipelineConfig `yaml:"pipeline,omitempty"`
	Gateway  GatewayConfig  `yaml:"gateway,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Hooks    HooksConfig    `yaml:"hooks,omitempty"`
}

// RelayConfig selects how persona prompts reach the completion service.
type RelayConfig struct {
	Mode             string            `yaml:"mode,omitempty"` // "direct" | "gateway"
	Model            string            `yaml:"model,omitempty"`
	OpenAIBaseURL    string            `yaml:"openaiBaseUrl,omitempty"`
	AnthropicBaseURL string            `yaml:"anthropicBaseUrl,omitempty"`
	GatewayURL       string            `yaml:"gatewayUrl,omitempty"` // used when mode is "gateway"
	MaxTokens        int               `yaml:"maxTokens,omitempty"`
	Aliases          map[string]string `yaml:"aliases,omitempty"` // model prefix -> provider name
}

// PipelineConfig tunes the orchestrator.
type PipelineConfig struct {
	PauseMs             *int `yaml:"pauseMs,omitempty"` // nil means the default 1000ms; 0 disables the pause
	AgentTimeoutSeconds int  `yaml:"agentTimeoutSeconds,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
	TLS            GatewayTLS  `yaml:"tls,omitempty"`
	AllowedOrigins []string    `yaml:"allowedOrigins,omitempty"`
}

// GatewayAuth configures websocket session authentication.
type GatewayAuth struct {
	Mode     string `yaml:"mode,omitempty"` // "none" | "token" | "password"
	Token    string `yaml:"token,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// GatewayTLS configures TLS for the gateway.
type GatewayTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// HooksConfig maps lifecycle events to shell commands.
type HooksConfig struct {
	RunStart     []HookEntry `yaml:"runStart,omitempty"`
	RunComplete  []HookEntry `yaml:"runComplete,omitempty"`
	RunFailed    []HookEntry `yaml:"runFailed,omitempty"`
	GatewayStart []HookEntry `yaml:"gatewayStart,omitempty"`
	GatewayStop  []HookEntry `yaml:"gatewayStop,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
