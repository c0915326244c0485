// Package session implements the client-side session lifecycle: activity
// tracking, inactivity expiry, and the voluntary/forced logout protocols.
//
// A Manager is the single source of truth for "is there a usable session,
// and for how much longer". It is constructed once at the application's
// composition point and handed to consumers; it is not a package-level
// singleton.
package session

import "time"

// Provider tags where a session's credential came from.
type Provider string

const (
	// ProviderNone indicates a direct credential login.
	ProviderNone Provider = ""

	// ProviderGoogle indicates the session originated from a Google OAuth
	// flow and may carry a revocable provider access token.
	ProviderGoogle Provider = "google"
)

// knownProviders lists every provider whose access-token key must be cleared
// on teardown, regardless of which provider the current session came from.
var knownProviders = []Provider{ProviderGoogle}

// User is the last-known profile snapshot. It may be stale relative to the
// server; RefreshProfile updates it.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company,omitempty"`
	Tier      string `json:"tier,omitempty"`
}

// Snapshot is the session state as persisted: a bearer credential, a cached
// profile, an activity timestamp, and the identity-provider tag.
type Snapshot struct {
	Token               string
	User                *User
	LastActivityAt      time.Time
	IdentityProvider    Provider
	ProviderAccessToken string // present only for OAuth-originated sessions
}
