// Package filestore provides a JSON-file-backed Store that can be shared by
// multiple manager instances. It implements storage.Watcher so an instance
// can observe another instance's teardown.
package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/leadpilot/go-session-client/storage"
)

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Watcher = (*Store)(nil)
)

// Store keeps all keys in a single JSON object on disk. Writes replace the
// file atomically (temp file + rename) so a concurrent reader never observes
// a partially written state.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store at path, creating the parent directory when missing.
// A missing file reads as empty; it is created on first write.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrapf(err, "[filestore.New] failed to create directory for %s", path)
	}
	return &Store{path: path}, nil
}

func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	value, ok := data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	data[key] = value
	return s.save(data)
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load()
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.save(data)
}

// load reads the backing file. A missing or corrupt file reads as empty:
// unparseable local state is treated as "no session", never as an error.
func (s *Store) load() map[string]string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]string{}
	}
	return data
}

func (s *Store) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[filestore.save] failed to encode state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrapf(err, "[filestore.save] failed to write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "[filestore.save] failed to replace %s", s.path)
	}
	return nil
}

// Watch emits a storage.Event whenever the backing file changes, including
// changes made by other processes. The watcher observes the parent directory
// because atomic rename-replace does not deliver events on the file itself.
func (s *Store) Watch(ctx context.Context) (<-chan storage.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "[filestore.Watch] failed to create watcher")
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "[filestore.Watch] failed to watch %s", filepath.Dir(s.path))
	}

	events := make(chan storage.Event, 1)
	base := filepath.Base(s.path)

	go func() {
		defer close(events)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}
				select {
				case events <- storage.Event{At: time.Now()}:
				default:
					// an undelivered event already signals a change
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, nil
}
