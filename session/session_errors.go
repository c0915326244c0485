package session

import (
	autherrors "github.com/leadpilot/go-session-client/internal/errors"
)

// Sentinel errors surfaced by the session packages. ErrInvalidToken is the
// authoritative invalid-credential signal: Backend implementations must wrap
// it for 401/403 responses so the manager can escalate to a forced logout.
var (
	ErrNoSession    = autherrors.ErrNoSession
	ErrInvalidToken = autherrors.ErrInvalidToken
)

// Reasons attached to teardown redirects. ReasonInactivity is the one
// user-visible string the periodic check produces.
const (
	ReasonInactivity   = "Session expired due to inactivity"
	ReasonInvalidToken = "Invalid authentication token"
)
