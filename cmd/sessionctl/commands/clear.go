package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Args:  cobra.NoArgs,
		Short: "Remove every session key from the persisted origin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd)
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := session.Clear(ctx, store); err != nil {
				return err
			}
			logger.Info("session cleared", "origin", cfg.StorageOrigin)
			fmt.Fprintf(cmd.OutOrStdout(), "cleared session in %s\n", cfg.StorageOrigin)
			return nil
		},
	}
}
