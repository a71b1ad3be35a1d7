package browser

import (
	"slices"
	"sync"

	"github.com/Skotchmaster/barangay_portal/internal/guard"
	"github.com/Skotchmaster/barangay_portal/internal/session"
)

// Store is a tab's handle on the shared site storage.
type Store interface {
	session.Storage
	session.Watcher
}

// Tab is a headless browser tab: a history stack, a router location and a
// storage handle. It implements guard.Navigator and guard.History.
type Tab struct {
	store Store

	mu      sync.Mutex
	entries []string
	index   int

	pop listeners[*guard.PopStateEvent]
	loc listeners[string]
}

func NewTab(store Store, start string) *Tab {
	if start == "" {
		start = "/"
	}
	return &Tab{store: store, entries: []string{start}}
}

func (t *Tab) Storage() Store { return t.store }

func (t *Tab) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[t.index]
}

// Entries returns the history stack and the current position in it.
func (t *Tab) Entries() ([]string, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.entries), t.index
}

// Navigate moves the router to path and notifies location listeners.
func (t *Tab) Navigate(path string, replace bool) {
	t.mu.Lock()
	if replace {
		t.entries[t.index] = path
	} else {
		t.pushLocked(path)
	}
	t.mu.Unlock()

	t.loc.emit(path)
}

// PushState adds a history entry without telling the router.
func (t *Tab) PushState(path string) {
	t.mu.Lock()
	t.pushLocked(path)
	t.mu.Unlock()
}

func (t *Tab) pushLocked(path string) {
	t.entries = append(t.entries[:t.index+1], path)
	t.index = len(t.entries) - 1
}

func (t *Tab) Back() bool    { return t.traverse(-1) }
func (t *Tab) Forward() bool { return t.traverse(1) }

// traverse moves through history and fires popstate. When a listener
// prevents the event the router location is left to that listener.
func (t *Tab) traverse(delta int) bool {
	t.mu.Lock()
	next := t.index + delta
	if next < 0 || next >= len(t.entries) {
		t.mu.Unlock()
		return false
	}
	t.index = next
	path := t.entries[next]
	t.mu.Unlock()

	ev := &guard.PopStateEvent{Path: path}
	t.pop.emit(ev)
	if !ev.DefaultPrevented() {
		t.loc.emit(path)
	}
	return true
}

func (t *Tab) OnPopState(fn func(*guard.PopStateEvent)) (stop func()) {
	return t.pop.add(fn)
}

// OnLocation registers fn for every router location change.
func (t *Tab) OnLocation(fn func(path string)) (stop func()) {
	return t.loc.add(fn)
}

type listeners[T any] struct {
	mu   sync.Mutex
	fns  map[uint64]func(T)
	ids  []uint64
	next uint64
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[uint64]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.ids = append(l.ids, id)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
		l.ids = slices.DeleteFunc(l.ids, func(v uint64) bool { return v == id })
	}
}

func (l *listeners[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

// emit calls listeners in registration order, skipping any removed by an
// earlier listener during the same emit.
func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	ids := slices.Clone(l.ids)
	l.mu.Unlock()

	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.fns[id]
		l.mu.Unlock()
		if ok {
			fn(v)
		}
	}
}
