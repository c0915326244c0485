package session

import "time"

// TerminationKind classifies why a session ended.
type TerminationKind string

const (
	// TerminationVoluntary is a user-initiated, best-effort
	// network-coordinated teardown.
	TerminationVoluntary TerminationKind = "voluntary"

	// TerminationForced is a synchronous, network-free teardown triggered by
	// detected invalidity (expiry, rejected credential, corrupt state).
	TerminationForced TerminationKind = "forced"

	// TerminationExternal means another manager instance cleared the shared
	// storage; the local instance only stopped its timers.
	TerminationExternal TerminationKind = "external"
)

// Termination is emitted on the manager's event channel exactly once per
// teardown. The UI layer decides what to do with RedirectURL; when a
// Redirector collaborator is configured the manager also navigates directly.
type Termination struct {
	Reason      string
	Kind        TerminationKind
	RedirectURL string
	At          time.Time
}

// Redirector performs the navigation side effect after teardown. Keeping it
// behind an interface keeps the terminate decision testable without a
// navigation layer.
type Redirector interface {
	Navigate(url string)
}

// RedirectorFunc adapts a function to the Redirector interface.
type RedirectorFunc func(url string)

func (f RedirectorFunc) Navigate(url string) { f(url) }
