package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

// Origin is a store shared by every tab of one site. Each tab gets its own
// handle; a write through one handle is announced to all the others, never
// to the writer, and only when the stored value actually changed.
type Origin struct {
	name    string
	backend session.Storage

	mu   sync.RWMutex
	tabs map[*Tab]struct{}
}

func NewOrigin(name string, backend session.Storage) *Origin {
	if backend == nil {
		backend = NewMemory()
	}
	return &Origin{
		name:    name,
		backend: backend,
		tabs:    make(map[*Tab]struct{}),
	}
}

func (o *Origin) Name() string { return o.name }

// Open registers a new tab handle.
func (o *Origin) Open() *Tab {
	t := &Tab{
		id:        uuid.NewString(),
		origin:    o,
		listeners: make(map[uint64]func(session.Event)),
	}

	o.mu.Lock()
	o.tabs[t] = struct{}{}
	n := len(o.tabs)
	o.mu.Unlock()

	slog.Debug("storage tab opened", "origin", o.name, "tab", t.id, "tabs", n)
	return t
}

// Tabs returns the number of open handles.
func (o *Origin) Tabs() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.tabs)
}

func (o *Origin) close(t *Tab) {
	o.mu.Lock()
	delete(o.tabs, t)
	n := len(o.tabs)
	o.mu.Unlock()

	slog.Debug("storage tab closed", "origin", o.name, "tab", t.id, "tabs", n)
}

func (o *Origin) broadcast(from *Tab, ev session.Event) {
	o.mu.RLock()
	targets := make([]*Tab, 0, len(o.tabs))
	for t := range o.tabs {
		if t != from {
			targets = append(targets, t)
		}
	}
	o.mu.RUnlock()

	for _, t := range targets {
		t.dispatch(ev)
	}
}

// Tab is one tab's view of an Origin.
type Tab struct {
	id     string
	origin *Origin

	mu        sync.RWMutex
	listeners map[uint64]func(session.Event)
	next      uint64
	closed    bool
}

func (t *Tab) ID() string { return t.id }

func (t *Tab) Get(ctx context.Context, key string) (string, bool, error) {
	return t.origin.backend.Get(ctx, key)
}

func (t *Tab) Set(ctx context.Context, key, value string) error {
	old, ok, err := t.origin.backend.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if ok && old == value {
		return nil
	}
	if err := t.origin.backend.Set(ctx, key, value); err != nil {
		return err
	}

	t.origin.broadcast(t, session.Event{Key: key, OldValue: old, NewValue: value, Source: t.id})
	return nil
}

func (t *Tab) Remove(ctx context.Context, key string) error {
	old, ok, err := t.origin.backend.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := t.origin.backend.Remove(ctx, key); err != nil {
		return err
	}

	t.origin.broadcast(t, session.Event{Key: key, OldValue: old, Removed: true, Source: t.id})
	return nil
}

func (t *Tab) Watch(fn func(session.Event)) (stop func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return func() {}
	}
	id := t.next
	t.next++
	t.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.listeners, id)
			t.mu.Unlock()
		})
	}
}

// Listeners returns the number of active Watch registrations.
func (t *Tab) Listeners() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.listeners)
}

// Close detaches the tab from its origin and drops its listeners.
func (t *Tab) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.listeners = make(map[uint64]func(session.Event))
	t.mu.Unlock()

	t.origin.close(t)
}

func (t *Tab) dispatch(ev session.Event) {
	t.mu.RLock()
	fns := make([]func(session.Event), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
