package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/barangay_portal/internal/session"
	"github.com/Skotchmaster/barangay_portal/internal/storage"
	"github.com/Skotchmaster/barangay_portal/internal/tokens"
)

type inspectReport struct {
	Status    string         `json:"status"`
	Reason    string         `json:"reason,omitempty"`
	Role      string         `json:"role,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	User      map[string]any `json:"user,omitempty"`
	Signature string         `json:"signature,omitempty"`
}

func newInspectCommand() *cobra.Command {
	var (
		token  string
		user   string
		secret string
		at     string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Args:  cobra.NoArgs,
		Short: "Evaluate a stored session the way the portal guard does",
		Long: `Evaluate a credential and session user. With --token the values are
taken from the flags, otherwise they are read from the persisted origin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = t
			}

			var store session.Storage
			if token != "" {
				mem := storage.NewMemory()
				_ = mem.Set(ctx, session.KeyAuthToken, token)
				if user != "" {
					_ = mem.Set(ctx, session.KeyUserData, user)
				}
				store = mem
			} else {
				cfg, _ := loadConfig(cmd)
				s, closeStore, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer closeStore()
				store = s
			}

			st := session.CheckAt(ctx, store, now)
			rep := inspectReport{
				Status:  st.Status.String(),
				Role:    st.Role(),
				Subject: st.Claims.Subject,
			}
			if st.Err != nil {
				rep.Reason = st.Err.Error()
			}
			if !st.Claims.ExpiresAt.IsZero() {
				exp := st.Claims.ExpiresAt.UTC()
				rep.ExpiresAt = &exp
			}
			if st.User != nil {
				rep.User = st.User.Fields
			}

			if secret != "" {
				raw, ok, err := session.ReadCredential(ctx, store)
				switch {
				case err != nil:
					return err
				case !ok:
					rep.Signature = "absent"
				default:
					if _, err := tokens.AccessClaimsFromToken(raw, []byte(secret)); err != nil {
						rep.Signature = "invalid: " + err.Error()
					} else {
						rep.Signature = "valid"
					}
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "credential to inspect")
	cmd.Flags().StringVarP(&user, "user", "u", "", "session user JSON")
	cmd.Flags().StringVar(&secret, "secret", "", "also verify the signature with this HS256 secret")
	cmd.Flags().StringVar(&at, "at", "", "evaluate as of this RFC3339 time")
	return cmd
}
