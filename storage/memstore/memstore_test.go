package memstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadpilot/go-session-client/storage"
	"github.com/leadpilot/go-session-client/storage/memstore"
)

func TestSetGetDelete(t *testing.T) {
	store := memstore.New()
	t.Cleanup(store.Close)

	_, err := store.Get(storage.KeyToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(storage.KeyToken, "abc"))
	value, err := store.Get(storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "abc", value)

	require.NoError(t, store.Set(storage.KeyToken, "def"))
	value, err = store.Get(storage.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "def", value)

	require.NoError(t, store.Delete(storage.KeyToken))
	_, err = store.Get(storage.KeyToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// deleting an absent key is not an error
	require.NoError(t, store.Delete(storage.KeyToken))
}

func TestSetWithTTLExpiresTransientMarkers(t *testing.T) {
	store := memstore.New()
	t.Cleanup(store.Close)

	require.NoError(t, store.SetWithTTL(storage.KeyAuthFlow, "google", 20*time.Millisecond))
	value, err := store.Get(storage.KeyAuthFlow)
	require.NoError(t, err)
	require.Equal(t, "google", value)

	require.Eventually(t, func() bool {
		_, err := store.Get(storage.KeyAuthFlow)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}
