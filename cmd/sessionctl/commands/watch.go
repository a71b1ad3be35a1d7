package commands

import (
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

func newWatchCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "watch",
		Args:  cobra.NoArgs,
		Short: "Print storage change events of the Redis origin until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd)
			if cfg.RedisURL == "" {
				return errors.New("watch needs REDIS_URL")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openRedis(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			enc := json.NewEncoder(cmd.OutOrStdout())
			events := make(chan session.Event, 16)
			unwatch := store.Watch(func(ev session.Event) {
				if !all && !ev.TouchesSession() {
					return
				}
				select {
				case events <- ev:
				default:
					logger.Warn("watch output is falling behind, event dropped", "key", ev.Key)
				}
			})
			defer unwatch()

			logger.Info("watching", "origin", cfg.StorageOrigin)
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev := <-events:
					if err := enc.Encode(ev); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include keys outside the session")
	return cmd
}
