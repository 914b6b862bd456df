package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/hooks"
	"github.com/soyeahso/boardroom/internal/llm"
	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show boardroom status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Boardroom %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Fprintf(out, "Config:   %s\n", paths.Config)
			fmt.Fprintf(out, "Logs:     %s\n", paths.Logs)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:   not found (using defaults)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:   error loading: %v\n", err)
				return nil
			}

			// Relay
			switch cfg.Relay.Mode {
			case "gateway":
				fmt.Fprintf(out, "Relay:    gateway %s model=%s\n", cfg.Relay.GatewayURL, cfg.Relay.Model)
			default:
				providers := llm.NewRegistryFromConfig(cfg.Relay, log).List()
				fmt.Fprintf(out, "Relay:    direct (%s) model=%s\n", strings.Join(providers, ", "), cfg.Relay.Model)
			}
			if os.Getenv(apiKeyEnv) != "" {
				fmt.Fprintf(out, "API key:  set via $%s\n", apiKeyEnv)
			} else {
				fmt.Fprintf(out, "API key:  not set (pass --api-key, set $%s, or enter it in the TUI)\n", apiKeyEnv)
			}

			// Pipeline
			fmt.Fprintf(out, "Pipeline: %d personas (%s) pause=%s agentTimeout=%s\n",
				persona.Default().Count(), strings.Join(persona.Default().IDs(), " → "),
				cfg.Pipeline.Pause(), cfg.Pipeline.AgentTimeout())

			// Gateway
			fmt.Fprintf(out, "Gateway:  port=%d bind=%s auth=%s\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.Auth.Mode)

			// Hooks
			hm := hooks.NewManager(log)
			if n := hm.RegisterCommands(cfg.Hooks); n > 0 {
				fmt.Fprintf(out, "Hooks:    %d command(s) on %s\n", n, strings.Join(hm.Events(), ", "))
			}

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
