package cli

import (
	"fmt"
	"io"

	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/hooks"
	"github.com/soyeahso/boardroom/internal/llm"
	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/soyeahso/boardroom/internal/pipeline"
	"github.com/soyeahso/boardroom/internal/relay"
)

// loadConfig reads and validates the config file. Without --log-level the
// package logger is rebuilt from the logging section.
func loadConfig(stderr io.Writer) (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	if logLevel == "" {
		log = logging.NewWithStyle(stderr, cfg.Logging.Level, cfg.Logging.ConsoleStyle)
	}
	return cfg, nil
}

// newRelay picks the relay for relay.mode: in-process providers, or a remote
// gateway's /api/chat.
func newRelay(cfg config.Config, l *logging.Logger) relay.Relay {
	if cfg.Relay.Mode == "gateway" {
		l.Debug().Str("url", cfg.Relay.GatewayURL).Msg("relaying through gateway")
		return relay.NewHTTPClient(cfg.Relay.GatewayURL, nil, l)
	}
	return newDirectRelay(cfg, l)
}

func newDirectRelay(cfg config.Config, l *logging.Logger) *relay.Direct {
	providers := llm.NewRegistryFromConfig(cfg.Relay, l)
	l.Debug().Strs("providers", providers.List()).Msg("completion providers registered")
	return relay.NewDirect(providers, cfg.Relay.Model, l)
}

func newHookManager(cfg config.Config, l *logging.Logger) *hooks.Manager {
	hm := hooks.NewManager(l)
	if n := hm.RegisterCommands(cfg.Hooks); n > 0 {
		l.Info().Int("count", n).Msg("command hooks registered")
	}
	return hm
}

func newOrchestrator(cfg config.Config, r relay.Relay, hm *hooks.Manager, l *logging.Logger) *pipeline.Orchestrator {
	return pipeline.New(r, l,
		pipeline.WithPause(cfg.Pipeline.Pause()),
		pipeline.WithAgentTimeout(cfg.Pipeline.AgentTimeout()),
		pipeline.WithModel(cfg.Relay.Model),
		pipeline.WithHooks(hm),
	)
}
