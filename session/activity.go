package session

import "sync"

// Signal identifies a kind of user interaction that counts as activity.
type Signal string

const (
	SignalPointerPress Signal = "pointerdown"
	SignalPointerMove  Signal = "pointermove"
	SignalKeyPress     Signal = "keydown"
	SignalScroll       Signal = "scroll"
	SignalTouchStart   Signal = "touchstart"
	SignalClick        Signal = "click"
)

// DefaultSignals is the interaction set subscribed to by default.
var DefaultSignals = []Signal{
	SignalPointerPress,
	SignalPointerMove,
	SignalKeyPress,
	SignalScroll,
	SignalTouchStart,
	SignalClick,
}

// ActivitySource delivers user-interaction signals. The manager funnels every
// delivered signal into a single activity-timestamp write, so sources may
// fire at arbitrarily high frequency.
type ActivitySource interface {
	// Subscribe registers fn to be called on every accepted signal and
	// returns a function that removes the registration.
	Subscribe(fn func()) (unsubscribe func(), err error)
}

// ChannelSource is an ActivitySource fed through a channel, for UI loops and
// test harnesses that synthesize interaction events.
type ChannelSource struct {
	signals chan Signal
	accept  map[Signal]bool
}

// NewChannelSource creates a source accepting only the given signal kinds.
// With no arguments it accepts DefaultSignals.
func NewChannelSource(signals ...Signal) *ChannelSource {
	if len(signals) == 0 {
		signals = DefaultSignals
	}
	accept := make(map[Signal]bool, len(signals))
	for _, s := range signals {
		accept[s] = true
	}
	return &ChannelSource{
		signals: make(chan Signal, 16),
		accept:  accept,
	}
}

// Emit delivers a signal. Signals outside the accepted set are dropped, as
// are signals arriving faster than subscribers drain them.
func (cs *ChannelSource) Emit(signal Signal) {
	if !cs.accept[signal] {
		return
	}
	select {
	case cs.signals <- signal:
	default:
	}
}

// Subscribe starts a goroutine delivering signals to fn until the returned
// unsubscribe function is called.
func (cs *ChannelSource) Subscribe(fn func()) (func(), error) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-cs.signals:
				if !ok {
					return
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}, nil
}
