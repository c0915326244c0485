package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/leadpilot/go-session-client/internal/utils"
	"github.com/leadpilot/go-session-client/session"
	"github.com/leadpilot/go-session-client/storage"
	"github.com/leadpilot/go-session-client/storage/storefakes"
)

// watchableStore wraps the fake store with a manually driven change feed,
// standing in for a store shared with another manager instance.
type watchableStore struct {
	*storefakes.FakeStore
	changes chan storage.Event
}

func newWatchableStore() *watchableStore {
	return &watchableStore{
		FakeStore: storefakes.NewFakeStore(),
		changes:   make(chan storage.Event, 1),
	}
}

func (ws *watchableStore) Watch(ctx context.Context) (<-chan storage.Event, error) {
	out := make(chan storage.Event, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-ws.changes:
				if !ok {
					return
				}
				out <- event
			}
		}
	}()
	return out, nil
}

func TestExternalTeardownObservedThroughWatcher(t *testing.T) {
	clock := newFakeClock()
	store := newWatchableStore()
	require.NoError(t, store.Set(storage.KeyToken, testToken))
	require.NoError(t, store.Set(storage.KeyLastActivity, utils.MillisString(clock.Now())))
	redirect := &redirectRecorder{}

	manager, err := session.New(
		session.Settings{InactivityTimeout: testTimeout, LandingURL: testLandingURL},
		session.Collaborators{Store: store, Backend: &fakeBackend{}, Redirect: redirect},
		session.WithNowTime(clock.Now),
		session.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(manager.Close)
	require.Equal(t, session.StateActive, manager.State())

	// another instance clears the shared storage
	require.NoError(t, store.Delete(storage.KeyToken))
	require.NoError(t, store.Delete(storage.KeyLastActivity))
	store.changes <- storage.Event{At: time.Now()}

	event := waitForTermination(t, manager)
	require.Equal(t, session.TerminationExternal, event.Kind)
	require.Equal(t, session.StateNoSession, manager.State())

	// the local instance only stopped its timers, it does not redirect again
	require.Empty(t, redirect.all())
}

func TestWatcherIgnoresOwnWrites(t *testing.T) {
	clock := newFakeClock()
	store := newWatchableStore()
	require.NoError(t, store.Set(storage.KeyToken, testToken))
	require.NoError(t, store.Set(storage.KeyLastActivity, utils.MillisString(clock.Now())))

	manager, err := session.New(
		session.Settings{InactivityTimeout: testTimeout, LandingURL: testLandingURL},
		session.Collaborators{Store: store, Backend: &fakeBackend{}},
		session.WithNowTime(clock.Now),
		session.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	// a change with the token still present is another instance's activity
	// write, not a teardown
	store.changes <- storage.Event{At: time.Now()}

	requireNoTermination(t, manager)
	require.Equal(t, session.StateActive, manager.State())
}
