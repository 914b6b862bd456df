package llm

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/logging"
)

// ProviderError is returned when a completion provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status code from upstream (401, 429, 500, etc.)

	cause error
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.cause }

// Unauthorized reports whether upstream rejected the credential.
func (e *ProviderError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

func missingKey(provider string) error {
	return &ProviderError{Provider: provider, Message: "API key is required", Code: http.StatusUnauthorized}
}

// Registry resolves model names to provider clients.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // exact model name → provider name
	prefixes map[string]string // model name prefix → provider name
	fallback string
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients:  make(map[string]Client),
		aliases:  make(map[string]string),
		prefixes: make(map[string]string),
		log:      log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Debug().Str("provider", name).Msg("registered provider")
}

// Alias maps an exact model name to a provider.
func (r *Registry) Alias(model, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[model] = provider
}

// AliasPrefix maps every model starting with prefix to a provider.
// The longest matching prefix wins.
func (r *Registry) AliasPrefix(prefix, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[prefix] = provider
}

// SetFallback sets the provider used when nothing else matches.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Resolve returns the Client for the given model reference.
// Resolution order: exact provider name → alias → longest prefix → fallback.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[model]; ok {
		return c, nil
	}

	if provider, ok := r.aliases[model]; ok {
		if c, ok := r.clients[provider]; ok {
			return c, nil
		}
	}

	best := ""
	for prefix := range r.prefixes {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		if c, ok := r.clients[r.prefixes[best]]; ok {
			return c, nil
		}
	}

	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}

	return nil, fmt.Errorf("no LLM provider for model %q", model)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewRegistryFromConfig registers the OpenAI and Anthropic providers.
// claude-* models go to Anthropic; everything else falls back to OpenAI.
func NewRegistryFromConfig(cfg config.RelayConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	reg.Register("openai", NewOpenAIClient(cfg.OpenAIBaseURL, cfg.MaxTokens))
	reg.Register("anthropic", NewAnthropicClient(cfg.AnthropicBaseURL, cfg.MaxTokens))
	reg.SetFallback("openai")

	for _, prefix := range []string{"gpt-", "chatgpt-", "o1", "o3", "o4"} {
		reg.AliasPrefix(prefix, "openai")
	}
	reg.AliasPrefix("claude-", "anthropic")
	for _, alias := range []string{"sonnet", "opus", "haiku"} {
		reg.Alias(alias, "anthropic")
	}

	for prefix, provider := range cfg.Aliases {
		reg.AliasPrefix(prefix, provider)
	}

	return reg
}
