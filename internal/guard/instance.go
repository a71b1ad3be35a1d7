package guard

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

type policy func(path string, allowed []string, st session.State) Decision

// instance is the lifecycle shared by both guard kinds: listeners live
// exactly as long as the mount, and every evaluation starts from Checking.
type instance struct {
	deps   Deps
	log    *slog.Logger
	decide policy
	subs   subscriptions

	mu      sync.Mutex
	mounted bool
	path    string
	allowed []string
	status  Status
	last    Decision
	gen     uint64
}

func newInstance(deps Deps, kind string, decide policy, allowed []string) *instance {
	return &instance{
		deps:    deps,
		log:     deps.logger().With("guard", kind),
		decide:  decide,
		allowed: slices.Clone(allowed),
	}
}

// mount returns false when the instance was already mounted; in that case
// it behaves like a path change.
func (in *instance) mount(ctx context.Context, path string, attach func()) bool {
	in.mu.Lock()
	if in.mounted {
		in.mu.Unlock()
		in.pathChanged(ctx, path)
		return false
	}
	in.mounted = true
	in.path = path
	in.status = StatusChecking
	in.mu.Unlock()

	if in.deps.Watcher != nil {
		in.subs.add(in.deps.Watcher.Watch(in.onStorage))
	}
	if attach != nil {
		attach()
	}

	in.evaluate(ctx)
	return true
}

func (in *instance) pathChanged(ctx context.Context, path string) {
	in.mu.Lock()
	if !in.mounted {
		in.mu.Unlock()
		return
	}
	in.path = path
	in.status = StatusChecking
	in.mu.Unlock()

	in.evaluate(ctx)
}

func (in *instance) setAllowed(ctx context.Context, roles []string) {
	in.mu.Lock()
	in.allowed = slices.Clone(roles)
	mounted := in.mounted
	if mounted {
		in.status = StatusChecking
	}
	in.mu.Unlock()

	if mounted {
		in.evaluate(ctx)
	}
}

func (in *instance) unmount() {
	in.mu.Lock()
	in.mounted = false
	in.status = StatusChecking
	in.gen++
	in.mu.Unlock()

	in.subs.release()
}

func (in *instance) onStorage(ev session.Event) {
	if !ev.TouchesSession() {
		return
	}
	in.log.Debug("storage changed in another tab", "key", ev.Key, "removed", ev.Removed)
	in.evaluate(context.Background())
}

// evaluate runs one Checking pass. A pass overtaken by a newer one, or by an
// unmount, drops its result instead of navigating a view that is gone.
func (in *instance) evaluate(ctx context.Context) {
	in.mu.Lock()
	if !in.mounted {
		in.mu.Unlock()
		return
	}
	in.gen++
	gen := in.gen
	path := in.path
	allowed := in.allowed
	in.mu.Unlock()

	st := in.deps.check(ctx)
	dec := in.decide(path, allowed, st)

	in.mu.Lock()
	if !in.mounted || gen != in.gen {
		in.mu.Unlock()
		return
	}
	in.status = statusOf(dec)
	in.last = dec
	in.mu.Unlock()

	in.log.Debug("guard decision",
		"path", path,
		"state", st.Status.String(),
		"action", dec.Action.String(),
		"clear", dec.ClearSession,
		"reason", errString(dec.Reason),
	)
	// A newer pass may have started while this one was logging. A storage
	// event on another goroutine can still slip in before apply.
	if !in.current(gen) {
		return
	}
	in.deps.apply(ctx, dec, in.log)
}

func (in *instance) current(gen uint64) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mounted && gen == in.gen
}

func (in *instance) snapshot() (Status, Decision, string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.status, in.last, in.path
}

func (in *instance) isMounted() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mounted
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
