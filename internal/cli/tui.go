package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/soyeahso/boardroom/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive boardroom",
		Long: "Opens the terminal UI. The API key can be entered in Settings (Ctrl+S) or taken from $" +
			apiKeyEnv + "; it is kept in memory only. Logs go to the log file, never the terminal.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if model != "" {
				cfg.Relay.Model = model
			}

			w, closeLog, err := openLogFile(cfg.Logging.File)
			if err != nil {
				return err
			}
			defer closeLog()
			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			fileLog := logging.NewWithStyle(w, level, "json")

			hm := newHookManager(cfg, fileLog)
			defer hm.Wait()
			orch := newOrchestrator(cfg, newRelay(cfg, fileLog), hm, fileLog)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			app := tui.NewApp(orch,
				tui.WithContext(ctx),
				tui.WithLogger(fileLog),
				tui.WithCredential(os.Getenv(apiKeyEnv)),
			)
			if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("running tui: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model hint passed to the relay")
	return cmd
}

// openLogFile opens path, or the default log file, for appending.
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		if err := paths.EnsureDirs(); err != nil {
			return nil, nil, err
		}
		path = paths.LogFile()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
