package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/soyeahso/boardroom/internal/pipeline"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		idea    string
		apiKey  string
		model   string
		asJSON  bool
		pauseMs int
	)

	cmd := &cobra.Command{
		Use:   "run [idea]",
		Short: "Hold one meeting and stream it to stdout",
		Example: `  boardroom run "A subscription service for fresh air"
  BOARDROOM_API_KEY=sk-... boardroom run --idea "Robot baristas" --model claude-sonnet-4-5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if idea == "" {
				idea = strings.Join(args, " ")
			}
			if apiKey == "" {
				apiKey = os.Getenv(apiKeyEnv)
			}

			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if model != "" {
				cfg.Relay.Model = model
			}
			if cmd.Flags().Changed("pause-ms") {
				cfg.Pipeline.PauseMs = &pauseMs
			}

			hm := newHookManager(cfg, log)
			defer hm.Wait()
			orch := newOrchestrator(cfg, newRelay(cfg, log), hm, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			events, err := orch.Run(ctx, idea, apiKey)
			switch {
			case errors.Is(err, pipeline.ErrEmptyInput):
				return cmd.Help()
			case errors.Is(err, pipeline.ErrMissingCredential):
				return fmt.Errorf("%w: pass --api-key or set %s", err, apiKeyEnv)
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printSnapshot(out, events)
			}
			return streamRun(out, orch.Personas(), events)
		},
	}

	cmd.Flags().StringVar(&idea, "idea", "", "seed idea (default: the positional arguments)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "completion service API key (default $"+apiKeyEnv+")")
	cmd.Flags().StringVar(&model, "model", "", "model hint passed to the relay")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print only the final run snapshot as JSON")
	cmd.Flags().IntVar(&pauseMs, "pause-ms", 0, "pause between personas in milliseconds (default from config)")

	return cmd
}

// streamRun prints fragments as they arrive, one section per persona.
func streamRun(w io.Writer, personas *persona.Registry, events <-chan pipeline.Event) error {
	var failure error
	for ev := range events {
		switch ev.Kind {
		case pipeline.EventRunStarted:
			fmt.Fprintf(w, "Initial Idea: %s\n", ev.Snapshot.Seed)
		case pipeline.EventAgentActive:
			fmt.Fprintf(w, "\n%s\n\n", sectionHeader(personas, ev.AgentID))
		case pipeline.EventFragment:
			io.WriteString(w, ev.Fragment)
		case pipeline.EventAgentDone:
			io.WriteString(w, "\n")
		case pipeline.EventRunCompleted:
			fmt.Fprintf(w, "\nMeeting adjourned after %d proposals.\n", len(ev.Snapshot.Completed()))
		case pipeline.EventRunFailed:
			failure = ev.Err
		}
	}
	if failure != nil {
		return fmt.Errorf("meeting failed: %w", failure)
	}
	return nil
}

func sectionHeader(personas *persona.Registry, id string) string {
	def, err := personas.ByID(id)
	if err != nil {
		return "--- " + id + " ---"
	}
	return fmt.Sprintf("--- %s %s (%s) ---", def.Archetype.Icon(), def.Name, def.Role)
}

func printSnapshot(w io.Writer, events <-chan pipeline.Event) error {
	snap, runErr := pipeline.Collect(events)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("meeting failed: %w", runErr)
	}
	return nil
}
