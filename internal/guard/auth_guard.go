package guard

import (
	"context"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

// AuthGuard wraps the whole router. It keeps visitors without a usable
// credential out of the dashboard area, reacting to path changes, to
// storage changes made by other tabs and to back/forward navigation.
//
// Cross-tab logout is eventually consistent: a dashboard stays visible until
// the storage event reaches this tab. Expiry is noticed on the next
// evaluation, never by a timer.
type AuthGuard struct {
	*instance
}

func NewAuthGuard(deps Deps) *AuthGuard {
	g := &AuthGuard{}
	g.instance = newInstance(deps, "auth", func(path string, _ []string, st session.State) Decision {
		return ForPath(path, st)
	}, nil)
	return g
}

// Mount starts guarding at path and attaches the storage and popstate
// listeners. Mounting twice does not add listeners.
func (g *AuthGuard) Mount(ctx context.Context, path string) {
	g.mount(ctx, path, func() {
		if g.deps.History != nil {
			g.subs.add(g.deps.History.OnPopState(g.onPopState))
		}
	})
}

func (g *AuthGuard) PathChanged(ctx context.Context, path string) {
	g.pathChanged(ctx, path)
}

// Unmount detaches every listener installed by Mount.
func (g *AuthGuard) Unmount() {
	g.unmount()
}

func (g *AuthGuard) Status() Status {
	s, _, _ := g.snapshot()
	return s
}

func (g *AuthGuard) Decision() Decision {
	_, d, _ := g.snapshot()
	return d
}

func (g *AuthGuard) Path() string {
	_, _, p := g.snapshot()
	return p
}

// Listeners returns the number of listeners currently attached.
func (g *AuthGuard) Listeners() int {
	return g.subs.len()
}

// onPopState stops the back button from re-exposing a dashboard after
// logout: the pop is cancelled, a fresh login entry is pushed over it and
// the router is sent to the login page.
func (g *AuthGuard) onPopState(e *PopStateEvent) {
	if !g.isMounted() {
		return
	}

	ctx := context.Background()
	dec := ForPath(e.Path, g.deps.check(ctx))
	if dec.Action != ActionRedirect {
		return
	}

	g.log.Info("blocked back navigation", "path", e.Path, "reason", errString(dec.Reason))
	e.PreventDefault()
	g.deps.History.PushState(dec.Path)
	g.deps.apply(ctx, dec, g.log)
}
