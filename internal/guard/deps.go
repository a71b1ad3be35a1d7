package guard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

// Navigator performs router navigation.
type Navigator interface {
	Navigate(path string, replace bool)
}

// History is the part of the browser history API the guard touches.
type History interface {
	PushState(path string)
	OnPopState(fn func(*PopStateEvent)) (stop func())
}

type PopStateEvent struct {
	Path      string
	prevented bool
}

func (e *PopStateEvent) PreventDefault()        { e.prevented = true }
func (e *PopStateEvent) DefaultPrevented() bool { return e.prevented }

type Deps struct {
	Store     session.Storage
	Watcher   session.Watcher
	Navigator Navigator
	History   History
	Now       func() time.Time
	Logger    *slog.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) check(ctx context.Context) session.State {
	return session.CheckAt(ctx, d.Store, d.now())
}

// apply carries out the side effects of a redirect decision.
func (d Deps) apply(ctx context.Context, dec Decision, l *slog.Logger) {
	if dec.Action != ActionRedirect {
		return
	}
	if dec.ClearSession {
		if err := session.Clear(ctx, d.Store); err != nil {
			l.Warn("session clear failed", "error", err)
		}
	}
	if d.Navigator != nil {
		d.Navigator.Navigate(dec.Path, dec.Replace)
	}
}

// Status tracks one guard instance. Every guard starts in StatusChecking and
// renders nothing until its first evaluation finishes.
type Status int

const (
	StatusChecking Status = iota
	StatusAdmitted
	StatusDenied
)

func (s Status) String() string {
	switch s {
	case StatusAdmitted:
		return "admitted"
	case StatusDenied:
		return "denied"
	default:
		return "checking"
	}
}

func statusOf(d Decision) Status {
	switch d.Action {
	case ActionAdmit:
		return StatusAdmitted
	case ActionRedirect:
		return StatusDenied
	default:
		return StatusChecking
	}
}

// subscriptions releases listeners registered while mounted.
type subscriptions struct {
	mu    sync.Mutex
	stops []func()
}

func (s *subscriptions) add(stop func()) {
	s.mu.Lock()
	s.stops = append(s.stops, stop)
	s.mu.Unlock()
}

func (s *subscriptions) release() {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

func (s *subscriptions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stops)
}
