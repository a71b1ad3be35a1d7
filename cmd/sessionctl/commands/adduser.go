package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/barangay_portal/internal/account"
	"github.com/Skotchmaster/barangay_portal/internal/logging"
)

func newAddUserCommand() *cobra.Command {
	var username, password, role, fullName string

	cmd := &cobra.Command{
		Use:   "adduser",
		Args:  cobra.NoArgs,
		Short: "Create a portal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd)
			ctx := logging.IntoContext(cmd.Context(), logger)

			gdb, closeDB, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := account.Migrate(gdb); err != nil {
				return err
			}

			svc := &account.Service{Repo: &account.GormRepo{DB: gdb}}
			u, err := svc.Register(ctx, username, password, role, fullName)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Username, u.Role, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", "", "one of the portal roles")
	cmd.Flags().StringVar(&fullName, "name", "", "display name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
