package storefakes

import (
	"sync"

	"github.com/leadpilot/go-session-client/storage"
)

var _ storage.Store = (*FakeStore)(nil)

// FakeStore is an in-memory storage.Store that records every mutation, for
// asserting teardown behavior in tests.
type FakeStore struct {
	lock sync.RWMutex
	data map[string]string

	setCalls    []string
	deleteCalls []string

	// Optional injected failures
	GetErr    error
	SetErr    error
	DeleteErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		data: make(map[string]string),
	}
}

func (fs *FakeStore) Get(key string) (string, error) {
	if fs.GetErr != nil {
		return "", fs.GetErr
	}
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	value, ok := fs.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (fs *FakeStore) Set(key, value string) error {
	if fs.SetErr != nil {
		return fs.SetErr
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.data[key] = value
	fs.setCalls = append(fs.setCalls, key)
	return nil
}

func (fs *FakeStore) Delete(key string) error {
	if fs.DeleteErr != nil {
		return fs.DeleteErr
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.data, key)
	fs.deleteCalls = append(fs.deleteCalls, key)
	return nil
}

// Keys returns the keys currently stored.
func (fs *FakeStore) Keys() []string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	keys := make([]string, 0, len(fs.data))
	for key := range fs.data {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of stored keys.
func (fs *FakeStore) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.data)
}

// SetCalls returns the keys passed to Set, in order.
func (fs *FakeStore) SetCalls() []string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return append([]string(nil), fs.setCalls...)
}

// DeleteCalls returns the keys passed to Delete, in order.
func (fs *FakeStore) DeleteCalls() []string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return append([]string(nil), fs.deleteCalls...)
}
