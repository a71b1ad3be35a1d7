package guard

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

const (
	LoginPath       = "/login"
	DashboardPrefix = "/dashboard"
)

type Action int

const (
	ActionWait Action = iota
	ActionAdmit
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionAdmit:
		return "admit"
	case ActionRedirect:
		return "redirect"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is what a guard wants done for one evaluation. Carrying it out
// is left to an adapter (a tab router, an HTTP middleware).
type Decision struct {
	Action       Action
	Path         string
	Replace      bool
	ClearSession bool
	Reason       error
}

func Admit() Decision {
	return Decision{Action: ActionAdmit}
}

// RedirectToLogin sends the visitor to the login page without leaving the
// denied page in history.
func RedirectToLogin(reason error, clearSession bool) Decision {
	return Decision{
		Action:       ActionRedirect,
		Path:         LoginPath,
		Replace:      true,
		ClearSession: clearSession,
		Reason:       reason,
	}
}

// Protected reports whether path belongs to the dashboard area.
func Protected(path string) bool {
	return strings.HasPrefix(path, DashboardPrefix)
}

// ForPath is the site-wide policy: dashboard paths need a valid credential,
// everything else is public.
func ForPath(path string, st session.State) Decision {
	if !Protected(path) {
		return Admit()
	}
	return forState(st)
}

// ForRoute is the per-route policy: a valid credential whose user holds one
// of the allowed roles. A role mismatch redirects but keeps the session.
func ForRoute(st session.State, allowed []string) Decision {
	if !st.Valid() {
		return forState(st)
	}
	if session.Authorized(st, allowed...) {
		return Admit()
	}
	role := st.Role()
	if role == "" {
		role = "<none>"
	}
	return RedirectToLogin(fmt.Errorf("%w: %s not in %v", session.ErrRoleMismatch, role, allowed), false)
}

func forState(st session.State) Decision {
	switch {
	case st.Valid():
		return Admit()
	case st.NeedsCleanup():
		return RedirectToLogin(st.Err, true)
	default:
		return RedirectToLogin(st.Err, false)
	}
}
