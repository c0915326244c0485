package session_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadpilot/go-session-client/session"
)

func TestChannelSourceFiltersSignals(t *testing.T) {
	source := session.NewChannelSource(session.SignalClick)

	var calls atomic.Int64
	unsubscribe, err := source.Subscribe(func() { calls.Add(1) })
	require.NoError(t, err)
	defer unsubscribe()

	source.Emit(session.SignalPointerMove) // outside the accepted set
	source.Emit(session.SignalClick)

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// give the dropped signal a chance to surface if filtering were broken
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int64(1), calls.Load())
}

func TestChannelSourceUnsubscribeStopsDelivery(t *testing.T) {
	source := session.NewChannelSource()

	var calls atomic.Int64
	unsubscribe, err := source.Subscribe(func() { calls.Add(1) })
	require.NoError(t, err)

	source.Emit(session.SignalKeyPress)
	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	unsubscribe()
	unsubscribe() // idempotent
	time.Sleep(10 * time.Millisecond)

	source.Emit(session.SignalKeyPress)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int64(1), calls.Load())
}
