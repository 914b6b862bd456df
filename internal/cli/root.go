package cli

import (
	"github.com/soyeahso/boardroom/internal/config"
	"github.com/soyeahso/boardroom/internal/logging"
	"github.com/spf13/cobra"
)

// apiKeyEnv is read by commands that talk to the completion service. The key
// is never written to the config file.
const apiKeyEnv = "BOARDROOM_API_KEY"

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardroom",
		Short: "Boardroom: pitch an idea to a board of executive personas",
		Long: "Boardroom passes an idea through five executive personas in turn. Each one " +
			"reads everything said so far and streams back a critique and rewrite.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(cmd.ErrOrStderr(), level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.boardroom/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPersonasCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
