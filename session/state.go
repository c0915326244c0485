package session

// State represents where a session instance is in its lifecycle.
// The terminal state for any session instance is StateNoSession; a new
// active session is a fresh instance (fresh timer generation), never a
// resumption of a torn-down one.
type State string

const (
	// StateNoSession indicates no bearer credential is stored.
	StateNoSession State = "no_session"

	// StateActive indicates a credential is stored and the inactivity
	// timeout has not elapsed.
	StateActive State = "active"

	// StateExpiring indicates a credential is stored but stale: the timeout
	// has elapsed and teardown has not yet run.
	StateExpiring State = "expiring"

	// StateLoggingOut indicates a voluntary logout is in flight. Further
	// Logout calls are no-ops until it completes.
	StateLoggingOut State = "logging_out"
)
