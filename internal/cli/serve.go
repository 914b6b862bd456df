package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/gateway"
	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		bind        string
		autoRestart bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway: the /api/chat relay and websocket meetings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}
			if issues := config.Validate(&cfg); len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("invalid flags: %d issue(s)", len(issues))
			}

			if autoRestart {
				go autorestart.RestartOnChange()
			}

			// Load raw config for RPC access
			raw, err := config.LoadRaw(paths.Config)
			if err != nil {
				raw = make(map[string]any)
			}

			hm := newHookManager(cfg, log)
			defer hm.Wait()

			// The gateway is the upstream end of a remote relay, so it always
			// talks to the providers itself.
			if cfg.Relay.Mode == "gateway" {
				log.Warn().Msg("relay.mode is gateway; serve relays directly to the completion providers")
			}
			r := newDirectRelay(cfg, log)
			orch := newOrchestrator(cfg, r, hm, log)

			srv := gateway.New(cfg, log,
				gateway.WithRelay(r),
				gateway.WithOrchestrator(orch),
				gateway.WithHooks(hm),
				gateway.WithConfigRaw(raw),
			)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default from config, 18790)")
	cmd.Flags().StringVar(&bind, "bind", "", "bind mode: loopback, lan, auto, custom")
	cmd.Flags().BoolVar(&autoRestart, "autorestart", false, "restart the process when its binary changes")

	return cmd
}
