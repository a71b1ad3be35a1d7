package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

type Status int

const (
	StatusMissing Status = iota
	StatusMalformed
	StatusExpired
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusMalformed:
		return "malformed"
	case StatusExpired:
		return "expired"
	case StatusValid:
		return "valid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is the outcome of inspecting a store. Err is nil only when Status is
// StatusValid and otherwise wraps one of the package sentinels.
type State struct {
	Status Status
	User   *User
	Claims Claims
	Err    error
}

func (s State) Valid() bool {
	return s.Status == StatusValid
}

// NeedsCleanup reports whether stored session keys are stale or corrupt and
// must be wiped.
func (s State) NeedsCleanup() bool {
	return s.Status == StatusExpired || s.Status == StatusMalformed
}

// Role returns the session user's role, or "" when there is none.
func (s State) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// ReadCredential returns the first non-empty credential found. A key holding
// an empty string is still reported as present when no other key has a
// value, so the empty credential is judged malformed rather than missing.
func ReadCredential(ctx context.Context, store Storage) (string, bool, error) {
	return readFirst(ctx, store, credentialKeys, true)
}

// ReadSessionUser returns the first non-empty serialized session user found.
func ReadSessionUser(ctx context.Context, store Storage) (string, bool, error) {
	return readFirst(ctx, store, userKeys, false)
}

func readFirst(ctx context.Context, store Storage, keys []string, keepEmpty bool) (string, bool, error) {
	present := false
	for _, k := range keys {
		v, ok, err := store.Get(ctx, k)
		if err != nil {
			return "", false, fmt.Errorf("read %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if v != "" {
			return v, true, nil
		}
		present = present || keepEmpty
	}
	return "", present, nil
}

func Check(ctx context.Context, store Storage) State {
	return CheckAt(ctx, store, time.Now())
}

// CheckAt inspects the stored credential and session user as of now.
// It never fails: read errors and decode errors are reported through State.
func CheckAt(ctx context.Context, store Storage, now time.Time) State {
	token, ok, err := ReadCredential(ctx, store)
	if err != nil {
		return State{Status: StatusMissing, Err: fmt.Errorf("%w: %w", ErrStorage, err)}
	}
	if !ok {
		return State{Status: StatusMissing, Err: ErrMissingCredential}
	}

	claims, err := DecodeCredential(token)
	if err != nil {
		return State{Status: StatusMalformed, Err: err}
	}
	if claims.Expired(now) {
		return State{
			Status: StatusExpired,
			Claims: claims,
			Err:    fmt.Errorf("%w: exp %v", ErrExpiredCredential, claims.Exp),
		}
	}

	raw, ok, err := ReadSessionUser(ctx, store)
	if err != nil {
		return State{Status: StatusMissing, Claims: claims, Err: fmt.Errorf("%w: %w", ErrStorage, err)}
	}
	if !ok {
		return State{Status: StatusValid, Claims: claims}
	}

	user, err := ParseUser(raw)
	if err != nil {
		return State{Status: StatusMalformed, Claims: claims, Err: err}
	}
	return State{Status: StatusValid, User: user, Claims: claims}
}

// Authorized reports whether st admits a holder of one of the allowed roles.
// With no roles given any valid state is authorized.
func Authorized(st State, allowed ...string) bool {
	if !st.Valid() {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	if st.User == nil {
		return false
	}
	return slices.Contains(allowed, st.User.Role)
}

// Clear removes every session key. Absent keys are not an error, so calling
// it repeatedly is safe.
func Clear(ctx context.Context, store Storage) error {
	var errs []error
	for _, k := range Keys() {
		if err := store.Remove(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Save stores a freshly issued session under the current keys and drops the
// legacy spellings so only one copy is authoritative.
func Save(ctx context.Context, store Storage, token, user string) error {
	if err := store.Set(ctx, KeyAuthToken, token); err != nil {
		return fmt.Errorf("write %s: %w", KeyAuthToken, err)
	}
	if err := store.Set(ctx, KeyUserData, user); err != nil {
		return fmt.Errorf("write %s: %w", KeyUserData, err)
	}
	for _, k := range []string{KeyToken, KeyUser} {
		if err := store.Remove(ctx, k); err != nil {
			return fmt.Errorf("remove %s: %w", k, err)
		}
	}
	return nil
}
