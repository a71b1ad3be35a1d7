package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/barangay_portal/internal/browser"
	"github.com/Skotchmaster/barangay_portal/internal/routes"
	"github.com/Skotchmaster/barangay_portal/internal/session"
	"github.com/Skotchmaster/barangay_portal/internal/storage"
	"github.com/Skotchmaster/barangay_portal/internal/tokens"
)

func newSimulateCommand() *cobra.Command {
	var (
		role      string
		persisted bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Args:  cobra.NoArgs,
		Short: "Run a two-tab sign-in and logout against the session guard",
		Long: `Sign in from one tab, open the role's dashboard in a second tab, then
log out from the first tab and report how the second tab reacted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd)
			ctx := cmd.Context()

			var backend session.Storage
			if persisted {
				s, closeStore, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer closeStore()
				backend = s
			}

			secret := cfg.JWTSecret
			if len(secret) == 0 {
				secret = []byte("sessionctl-simulate")
			}
			return simulate(ctx, cmd.OutOrStdout(), simulation{
				Origin:  storage.NewOrigin(cfg.StorageOrigin, backend),
				Role:    role,
				Secret:  secret,
				TTL:     cfg.TokenTTL,
				Options: []browser.Option{browser.WithLogger(logger)},
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", session.RoleHealthWorker, "role of the simulated user")
	cmd.Flags().BoolVar(&persisted, "persisted", false, "back the origin with the configured database or Redis")
	return cmd
}

type simulation struct {
	Origin  *storage.Origin
	Role    string
	Secret  []byte
	TTL     time.Duration
	Options []browser.Option
}

func simulate(ctx context.Context, out io.Writer, sim simulation) error {
	home := routes.HomeFor(sim.Role)
	if _, ok := routes.Lookup(home); !ok {
		return fmt.Errorf("role %q has no dashboard", sim.Role)
	}

	signIn := sim.Origin.Open()
	defer signIn.Close()
	viewer := sim.Origin.Open()
	defer viewer.Close()

	now := time.Now()
	tok, err := tokens.Issue(sim.Secret, "simulated-user", sim.Role, now, now.Add(sim.TTL))
	if err != nil {
		return err
	}
	user, err := json.Marshal(map[string]string{"role": sim.Role, "username": "simulated-user"})
	if err != nil {
		return err
	}
	if err := session.Save(ctx, signIn, tok, string(user)); err != nil {
		return err
	}
	fmt.Fprintf(out, "tab %s: signed in as %s\n", signIn.ID(), sim.Role)

	tab := browser.NewTab(viewer, "/")
	app := browser.NewApp(tab, sim.Options...)
	app.Start(ctx)
	defer app.Stop()

	tab.Navigate(home, false)
	fmt.Fprintf(out, "tab %s: %s %s\n", viewer.ID(), tab.Path(), app.Status())

	if err := session.Clear(ctx, signIn); err != nil {
		return err
	}
	fmt.Fprintf(out, "tab %s: logged out\n", signIn.ID())
	fmt.Fprintf(out, "tab %s: %s %s\n", viewer.ID(), tab.Path(), app.Status())

	tab.Navigate(home, false)
	fmt.Fprintf(out, "tab %s: revisit %s -> %s %s\n", viewer.ID(), home, tab.Path(), app.Status())
	return nil
}
