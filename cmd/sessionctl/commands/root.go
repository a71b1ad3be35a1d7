package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/barangay_portal/internal/config"
	"github.com/Skotchmaster/barangay_portal/internal/logging"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sessionctl",
		Short:        "Inspect and manage barangay portal sessions",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInspectCommand(),
		newAddUserCommand(),
		newClearCommand(),
		newWatchCommand(),
		newSimulateCommand(),
	)

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger) {
	cfg := config.Load()
	logger := logging.NewWithOptions(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.LogLevel,
		Format:  "text",
		Service: "sessionctl",
	})
	return cfg, logger
}
