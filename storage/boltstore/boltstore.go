// Package boltstore provides a bbolt-backed Store for single-process durable
// session storage (CLI and desktop targets).
package boltstore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/leadpilot/go-session-client/storage"
)

const bucketName = "session"

var _ storage.Store = (*Store)(nil)

// Store persists session keys in a single bbolt bucket.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the database file at path. The parent
// directory is created when missing. bbolt takes an exclusive file lock, so a
// bolt-backed store cannot be shared between processes; use filestore for
// that.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "[boltstore.Open] failed to create directory %s", dir)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "[boltstore.Open] failed to open db at %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[boltstore.Open] failed to create session bucket")
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, error) {
	var value string
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(key)); v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "[boltstore.Get] read failed for %q", key)
	}
	if !found {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), []byte(value))
	})
	return errors.Wrapf(err, "[boltstore.Set] write failed for %q", key)
}

func (s *Store) Delete(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
	return errors.Wrapf(err, "[boltstore.Delete] delete failed for %q", key)
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
