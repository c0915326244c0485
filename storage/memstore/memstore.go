// Package memstore provides an in-memory Store for tests and ephemeral runs.
package memstore

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/leadpilot/go-session-client/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a thread-safe in-memory implementation of storage.Store backed by
// a TTL cache so transient flow markers can be given a bounded lifetime.
type Store struct {
	cache *ttlcache.Cache[string, string]
}

// New creates a started in-memory store. Values persist until deleted unless
// written with SetWithTTL.
func New() *Store {
	// reads must not extend a transient marker's lifetime
	cache := ttlcache.New[string, string](
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()
	return &Store{cache: cache}
}

func (s *Store) Get(key string) (string, error) {
	item := s.cache.Get(key)
	if item == nil {
		return "", storage.ErrNotFound
	}
	return item.Value(), nil
}

func (s *Store) Set(key, value string) error {
	s.cache.Set(key, value, ttlcache.NoTTL)
	return nil
}

// SetWithTTL writes a value that expires on its own, used for transient
// OAuth-flow markers that should never outlive an abandoned flow.
func (s *Store) SetWithTTL(key, value string, ttl time.Duration) error {
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *Store) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

// Close stops the background eviction loop.
func (s *Store) Close() {
	s.cache.Stop()
}
