package session

import "context"

// Storage is a string key/value store holding client-side session state.
// A missing key is reported with ok == false, never as an error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Event describes a change made to a shared store by another writer.
// An empty Key means the whole store was wiped.
type Event struct {
	Key      string `json:"key"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
	Removed  bool   `json:"removed,omitempty"`
	Source   string `json:"source"`
}

// TouchesSession reports whether the change can alter the session state.
func (e Event) TouchesSession() bool {
	return e.Key == "" || IsSessionKey(e.Key)
}

// Watcher delivers change events produced by other writers of the same store.
// Writes made through the watching handle itself are not delivered.
type Watcher interface {
	Watch(fn func(Event)) (stop func())
}
