package guard

import (
	"context"
	"slices"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

// PrivateRoute wraps a single route element. It shows a loading state
// until the check resolves, then either its children or a redirect to the
// login page.
type PrivateRoute struct {
	*instance
}

func NewPrivateRoute(deps Deps, allowed ...string) *PrivateRoute {
	r := &PrivateRoute{}
	r.instance = newInstance(deps, "route", func(_ string, allowed []string, st session.State) Decision {
		return ForRoute(st, allowed)
	}, allowed)
	return r
}

func (r *PrivateRoute) Mount(ctx context.Context, path string) {
	r.mount(ctx, path, nil)
}

func (r *PrivateRoute) PathChanged(ctx context.Context, path string) {
	r.pathChanged(ctx, path)
}

// SetAllowedRoles replaces the route's role set and re-runs the check.
func (r *PrivateRoute) SetAllowedRoles(ctx context.Context, roles ...string) {
	r.setAllowed(ctx, roles)
}

func (r *PrivateRoute) AllowedRoles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.allowed)
}

func (r *PrivateRoute) Unmount() {
	r.unmount()
}

// Status is the render state: Checking shows a loading indicator, Admitted
// the children, Denied a redirect.
func (r *PrivateRoute) Status() Status {
	s, _, _ := r.snapshot()
	return s
}

func (r *PrivateRoute) Decision() Decision {
	_, d, _ := r.snapshot()
	return d
}

func (r *PrivateRoute) Listeners() int {
	return r.subs.len()
}
