package boltstore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leadpilot/go-session-client/storage"
	"github.com/leadpilot/go-session-client/storage/boltstore"
)

func openTestStore(t *testing.T) *boltstore.Store {
	t.Helper()
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestSetGetDelete(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(storage.KeyToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(storage.KeyToken, "abc"))
	value, err := store.Get(storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "abc", value)

	require.NoError(t, store.Delete(storage.KeyToken))
	_, err = store.Get(storage.KeyToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Delete(storage.KeyToken))
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "session.db")

	store, err := boltstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(storage.KeyToken, "abc"))
	require.NoError(t, store.Set(storage.KeyLastActivity, "1700000000000"))
	require.NoError(t, store.Close())

	reopened, err := boltstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, reopened.Close()) })

	value, err := reopened.Get(storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "abc", value)
	value, err = reopened.Get(storage.KeyLastActivity)
	require.NoError(t, err)
	require.Equal(t, "1700000000000", value)
}

func TestSetOverwrites(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Set(storage.KeyLastActivity, "1700000000000"))
	require.NoError(t, store.Set(storage.KeyLastActivity, "1700000005000"))

	value, err := store.Get(storage.KeyLastActivity)
	require.NoError(t, err)
	require.Equal(t, "1700000005000", value)
}
