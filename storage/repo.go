// Package storage defines the durable key/value contract the session manager
// persists through. The manager treats storage as a single shared mutable
// resource; implementations decide durability (memory, bbolt file, shared
// JSON file).
package storage

import (
	"context"
	"errors"
	"time"
)

// Well-known keys written by the session manager. Every teardown clears the
// core session keys plus any transient flow markers in a single pass.
const (
	KeyToken            = "token"
	KeyUser             = "user"             // JSON-encoded profile snapshot
	KeyLastActivity     = "lastActivity"     // epoch milliseconds string
	KeyIdentityProvider = "identityProvider" // empty for direct credential login

	// Transient OAuth-flow markers, set by the login flow and never allowed
	// to outlive the session.
	KeyTermsAccepted = "termsAccepted"
	KeyAuthFlow      = "authFlow"
)

// ProviderTokenKey returns the key holding an identity provider's access
// token, e.g. "google_access_token".
func ProviderTokenKey(provider string) string {
	return provider + "_access_token"
}

// ErrNotFound is returned by Get for an absent key.
var ErrNotFound = errors.New("storage: key not found")

// Store defines the interface for durable session storage operations.
type Store interface {
	// Get retrieves a value by key. Returns ErrNotFound if the key is absent.
	Get(key string) (string, error)

	// Set creates or replaces a value
	Set(key, value string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}

// Event signals that the underlying storage changed outside the local
// process (another instance wrote or cleared session state).
type Event struct {
	At time.Time
}

// Watcher is an optional capability of a Store: change notification for
// cross-instance observation. A store shared between processes should
// implement it so one instance's teardown is visible to the others.
type Watcher interface {
	// Watch emits an Event for every external change until ctx is cancelled.
	// The returned channel is closed when watching stops.
	Watch(ctx context.Context) (<-chan Event, error)
}
