package browser

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/barangay_portal/internal/guard"
	"github.com/Skotchmaster/barangay_portal/internal/routes"
)

type Option func(*App)

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.deps.Now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.deps.Logger = l }
}

// App is the portal's route table running inside a Tab: one AuthGuard for
// the whole router and a PrivateRoute for whichever dashboard is showing.
type App struct {
	tab  *Tab
	deps guard.Deps
	auth *guard.AuthGuard

	mu          sync.Mutex
	active      *guard.PrivateRoute
	activeRoute string
	stop        func()
}

func NewApp(tab *Tab, opts ...Option) *App {
	a := &App{
		tab: tab,
		deps: guard.Deps{
			Store:     tab.Storage(),
			Watcher:   tab.Storage(),
			Navigator: tab,
			History:   tab,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.auth = guard.NewAuthGuard(a.deps)
	return a
}

func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	if a.stop != nil {
		a.mu.Unlock()
		return
	}
	a.stop = a.tab.OnLocation(func(path string) { a.onLocation(ctx, path) })
	a.mu.Unlock()

	path := a.tab.Path()
	a.auth.Mount(ctx, path)
	if a.tab.Path() == path {
		a.route(ctx, path)
	}
}

// Stop unmounts every guard and detaches from the tab.
func (a *App) Stop() {
	a.mu.Lock()
	stop := a.stop
	active := a.active
	a.stop, a.active, a.activeRoute = nil, nil, ""
	a.mu.Unlock()

	if stop != nil {
		stop()
	}
	a.auth.Unmount()
	if active != nil {
		active.Unmount()
	}
}

// Status is what the tab currently renders: Checking for a loading
// indicator, Admitted for the page, Denied while a redirect is underway.
func (a *App) Status() guard.Status {
	if s := a.auth.Status(); s != guard.StatusAdmitted {
		return s
	}
	a.mu.Lock()
	active := a.active
	a.mu.Unlock()
	if active == nil {
		return guard.StatusAdmitted
	}
	return active.Status()
}

func (a *App) onLocation(ctx context.Context, path string) {
	a.auth.PathChanged(ctx, path)
	if a.tab.Path() != path {
		return
	}
	a.route(ctx, path)
}

func (a *App) route(ctx context.Context, path string) {
	r, ok := routes.Lookup(path)

	a.mu.Lock()
	if ok && a.active != nil && a.activeRoute == r.Path {
		current := a.active
		a.mu.Unlock()
		current.PathChanged(ctx, path)
		return
	}
	old := a.active
	var next *guard.PrivateRoute
	if ok {
		next = guard.NewPrivateRoute(a.deps, r.Roles...)
	}
	a.active = next
	a.activeRoute = r.Path
	a.mu.Unlock()

	if old != nil {
		old.Unmount()
	}
	if next != nil {
		next.Mount(ctx, path)
	}
}
