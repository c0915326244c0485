package session

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/leadpilot/go-session-client/internal/utils"
	"github.com/leadpilot/go-session-client/storage"
)

const (
	// DefaultInactivityTimeout is how long a session may go without detected
	// activity before it expires.
	DefaultInactivityTimeout = 60 * time.Minute

	// DefaultCheckInterval is the fixed period of the background inactivity
	// check. It is decoupled from activity frequency: marking activity never
	// restarts it.
	DefaultCheckInterval = 5 * time.Minute
)

// Backend is the server-side auth API as seen by the manager. Both calls are
// best-effort during logout: failures are logged, never propagated into the
// teardown sequence.
type Backend interface {
	// NotifyLogout posts the logout notification with the user-visible reason.
	NotifyLogout(ctx context.Context, token, reason string) error

	// Profile fetches the current profile snapshot. Implementations must
	// return an error wrapping ErrInvalidToken for rejected credentials.
	Profile(ctx context.Context, token string) (*User, error)
}

// Revoker revokes an identity provider's access token on voluntary logout.
type Revoker interface {
	Name() string
	Revoke(ctx context.Context, accessToken string) error
}

// Settings carries the tunable parts of the session lifecycle.
type Settings struct {
	InactivityTimeout time.Duration // zero means DefaultInactivityTimeout
	CheckInterval     time.Duration // zero means DefaultCheckInterval
	LandingURL        string        // post-logout redirect target, required
}

// Collaborators holds the manager's external dependencies. Store, Backend and
// LandingURL are required; the rest are optional.
type Collaborators struct {
	Store    storage.Store
	Backend  Backend
	Revoker  Revoker        // provider revocation on voluntary logout
	Redirect Redirector     // navigation side effect, nil means event-only
	Activity ActivitySource // interaction signals funneled into MarkActivity
}

// Manager owns the session state, the inactivity timer, and the teardown
// protocols. All methods are safe for concurrent use.
type Manager struct {
	settings Settings
	collab   Collaborators
	logger   zerolog.Logger
	nowTime  func() time.Time

	mu          sync.Mutex
	generation  uuid.UUID // tags the current session instance
	stopTimer   chan struct{}
	unsubscribe func()
	watchCancel context.CancelFunc

	loggingOut atomic.Bool
	events     chan Termination
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger replaces the default global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New initializes a Manager with required dependencies and evaluates any
// persisted session before returning, so no consumer ever reads a stale one:
// a stored token whose activity timestamp breaches the inactivity timeout is
// torn down (forced logout, inactivity reason) during construction. A still
// valid session has its activity refreshed (process start counts as
// activity), the periodic check started, and the activity source subscribed.
func New(settings Settings, collab Collaborators, options ...Option) (*Manager, error) {
	if collab.Store == nil {
		return nil, errors.New("[session.New] Store is required")
	}
	if collab.Backend == nil {
		return nil, errors.New("[session.New] Backend is required")
	}
	if settings.LandingURL == "" {
		return nil, errors.New("[session.New] LandingURL is required")
	}
	if settings.InactivityTimeout == 0 {
		settings.InactivityTimeout = DefaultInactivityTimeout
	}
	if settings.CheckInterval == 0 {
		settings.CheckInterval = DefaultCheckInterval
	}

	m := &Manager{
		settings:   settings,
		collab:     collab,
		logger:     log.Logger,
		nowTime:    time.Now,
		generation: uuid.New(),
		events:     make(chan Termination, 8),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.storedToken() == "" {
		return m, nil
	}

	if m.TimeUntilExpiry() <= 0 {
		m.ForceLogout(ReasonInactivity)
		return m, nil
	}

	m.MarkActivity()
	m.mu.Lock()
	m.startTimerLocked()
	m.subscribeActivityLocked()
	m.watchStoreLocked()
	m.mu.Unlock()

	return m, nil
}

// Begin installs a fresh session after a successful login, registration, or
// OAuth callback. Any previous session's timers are stopped first; the new
// session gets a fresh timer generation, never a reused one.
func (m *Manager) Begin(snap Snapshot) error {
	if snap.Token == "" {
		return errors.New("[Manager.Begin] token is required")
	}

	m.mu.Lock()
	m.stopBackgroundLocked()
	m.generation = uuid.New()
	generation := m.generation
	m.mu.Unlock()

	if err := m.collab.Store.Set(storage.KeyToken, snap.Token); err != nil {
		return errors.Wrap(err, "[Manager.Begin] failed to persist token")
	}
	if snap.User != nil {
		raw, err := json.Marshal(snap.User)
		if err != nil {
			return errors.Wrap(err, "[Manager.Begin] failed to encode user")
		}
		if err := m.collab.Store.Set(storage.KeyUser, string(raw)); err != nil {
			return errors.Wrap(err, "[Manager.Begin] failed to persist user")
		}
	}

	lastActivity := snap.LastActivityAt
	if lastActivity.IsZero() {
		lastActivity = m.nowTime()
	}
	if err := m.collab.Store.Set(storage.KeyLastActivity, utils.MillisString(lastActivity)); err != nil {
		return errors.Wrap(err, "[Manager.Begin] failed to persist activity timestamp")
	}

	if snap.IdentityProvider != ProviderNone {
		if err := m.collab.Store.Set(storage.KeyIdentityProvider, string(snap.IdentityProvider)); err != nil {
			return errors.Wrap(err, "[Manager.Begin] failed to persist provider tag")
		}
		if snap.ProviderAccessToken != "" {
			key := storage.ProviderTokenKey(string(snap.IdentityProvider))
			if err := m.collab.Store.Set(key, snap.ProviderAccessToken); err != nil {
				return errors.Wrap(err, "[Manager.Begin] failed to persist provider token")
			}
		}
	}

	m.mu.Lock()
	if m.generation == generation {
		m.startTimerLocked()
		m.subscribeActivityLocked()
		m.watchStoreLocked()
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("provider", string(snap.IdentityProvider)).
		Str("generation", generation.String()).
		Msg("session started")
	return nil
}

// MarkActivity records that the user interacted just now. Cheap, idempotent,
// safe at arbitrarily high frequency. It never touches the periodic timer.
func (m *Manager) MarkActivity() {
	now := m.nowTime()
	if last, ok := m.lastActivity(); ok && last.After(now) {
		// keep the timestamp monotonic under clock adjustment
		return
	}
	if err := m.collab.Store.Set(storage.KeyLastActivity, utils.MillisString(now)); err != nil {
		m.logger.Warn().Err(err).Msg("failed to record activity timestamp")
	}
}

// TimeUntilExpiry returns how long until the session expires from inactivity.
// Pure query: zero when expired or when no activity timestamp is recorded.
func (m *Manager) TimeUntilExpiry() time.Duration {
	last, ok := m.lastActivity()
	if !ok {
		return 0
	}
	remaining := m.settings.InactivityTimeout - m.nowTime().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired reports whether a stored session has outlived the inactivity
// timeout. A missing token is not "expired", it is simply no session.
func (m *Manager) IsExpired() bool {
	if m.storedToken() == "" {
		return false
	}
	return m.TimeUntilExpiry() <= 0
}

// CheckNow runs the inactivity check synchronously and reports whether it
// tore the session down. The periodic timer calls this on its fixed period;
// consumers call it on demand (e.g. before rendering a protected view) so a
// backgrounded process that missed timer ticks still detects expiry promptly.
func (m *Manager) CheckNow() bool {
	if m.storedToken() == "" {
		return false
	}
	if m.TimeUntilExpiry() > 0 {
		return false
	}
	m.ForceLogout(ReasonInactivity)
	return true
}

// State reports where the session instance currently is in its lifecycle.
func (m *Manager) State() State {
	if m.loggingOut.Load() {
		return StateLoggingOut
	}
	if m.storedToken() == "" {
		return StateNoSession
	}
	if m.TimeUntilExpiry() <= 0 {
		return StateExpiring
	}
	return StateActive
}

// Current returns the persisted session snapshot. A corrupt stored profile is
// cleared and ignored rather than surfaced as an error.
func (m *Manager) Current() (Snapshot, error) {
	token := m.storedToken()
	if token == "" {
		return Snapshot{}, ErrNoSession
	}

	snap := Snapshot{Token: token}
	if raw, err := m.collab.Store.Get(storage.KeyUser); err == nil {
		user := &User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			m.logger.Warn().Err(err).Msg("discarding corrupt stored profile")
			_ = m.collab.Store.Delete(storage.KeyUser)
		} else {
			snap.User = user
		}
	}
	if last, ok := m.lastActivity(); ok {
		snap.LastActivityAt = last
	}
	if provider, err := m.collab.Store.Get(storage.KeyIdentityProvider); err == nil {
		snap.IdentityProvider = Provider(provider)
		key := storage.ProviderTokenKey(provider)
		if providerToken, err := m.collab.Store.Get(key); err == nil {
			snap.ProviderAccessToken = providerToken
		}
	}
	return snap, nil
}

// RefreshProfile refetches the profile snapshot from the backend and persists
// it. A rejected credential escalates to a forced logout, the one error class
// that is never silently ignored.
func (m *Manager) RefreshProfile(ctx context.Context) (*User, error) {
	token := m.storedToken()
	if token == "" {
		return nil, ErrNoSession
	}

	user, err := m.collab.Backend.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			m.ForceLogout(ReasonInvalidToken)
		}
		return nil, errors.Wrap(err, "[Manager.RefreshProfile] profile fetch failed")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.RefreshProfile] failed to encode user")
	}
	if err := m.collab.Store.Set(storage.KeyUser, string(raw)); err != nil {
		return nil, errors.Wrap(err, "[Manager.RefreshProfile] failed to persist user")
	}
	return user, nil
}

// Logout runs the voluntary logout sequence: provider revocation, server
// notification, then local teardown and redirect. Each network step is
// best-effort; neither failure blocks the local teardown, so the user always
// ends up logged out locally even with the network unreachable. Concurrent
// calls while one is in flight are no-ops.
func (m *Manager) Logout(ctx context.Context, reason string) (err error) {
	if !m.loggingOut.CompareAndSwap(false, true) {
		m.logger.Debug().Msg("logout already in flight")
		return nil
	}
	defer m.loggingOut.Store(false)

	defer func() {
		if r := recover(); r != nil {
			// never leave the user half logged out
			m.logger.Error().Interface("panic", r).Msg("logout panicked, forcing teardown")
			m.teardown(reason, TerminationForced)
			err = errors.Errorf("[Manager.Logout] recovered from panic: %v", r)
		}
	}()

	if m.collab.Revoker != nil {
		if providerToken := m.providerAccessToken(); providerToken != "" {
			if revokeErr := m.collab.Revoker.Revoke(ctx, providerToken); revokeErr != nil {
				m.logger.Warn().Err(revokeErr).
					Str("provider", m.collab.Revoker.Name()).
					Msg("provider revocation failed, continuing logout")
			}
		}
	}

	if token := m.storedToken(); token != "" {
		if notifyErr := m.collab.Backend.NotifyLogout(ctx, token, reason); notifyErr != nil {
			m.logger.Warn().Err(notifyErr).Msg("logout notification failed, continuing logout")
		}
	}

	m.teardown(reason, TerminationVoluntary)
	return nil
}

// ForceLogout is the fast, always-succeeds teardown for paths where the
// system already knows something is wrong: expiry, a rejected credential, or
// corrupt local state. No network calls are attempted.
func (m *Manager) ForceLogout(reason string) {
	m.teardown(reason, TerminationForced)
}

// Events delivers one Termination per teardown.
func (m *Manager) Events() <-chan Termination {
	return m.events
}

// Close stops the timer, the activity subscription, and the storage watcher
// without touching stored state. For process shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopBackgroundLocked()
}

// teardown clears all session state as a single unit, stops background work,
// and signals navigation. Against already-empty state it is a no-op: no
// second event, no second redirect.
func (m *Manager) teardown(reason string, kind TerminationKind) {
	m.mu.Lock()
	hadTimer := m.stopTimer != nil
	m.stopBackgroundLocked()
	hadToken := m.clearStorageLocked()
	m.mu.Unlock()

	if !hadToken && !hadTimer {
		return
	}

	target := m.landingURL(reason)
	m.logger.Info().
		Str("reason", reason).
		Str("kind", string(kind)).
		Msg("session terminated")

	m.emit(Termination{
		Reason:      reason,
		Kind:        kind,
		RedirectURL: target,
		At:          m.nowTime(),
	})

	if m.collab.Redirect != nil {
		m.collab.Redirect.Navigate(target)
	}
}

// clearStorageLocked removes every session key: core state, provider tokens
// for all known providers, and transient flow markers. Delete failures are
// logged and skipped so one bad key never leaves the rest behind.
func (m *Manager) clearStorageLocked() bool {
	token := m.storedToken()

	keys := []string{
		storage.KeyToken,
		storage.KeyUser,
		storage.KeyLastActivity,
		storage.KeyIdentityProvider,
		storage.KeyTermsAccepted,
		storage.KeyAuthFlow,
	}
	for _, provider := range knownProviders {
		keys = append(keys, storage.ProviderTokenKey(string(provider)))
	}

	for _, key := range keys {
		if err := m.collab.Store.Delete(key); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to clear session key")
		}
	}
	return token != ""
}

// stopBackgroundLocked stops the timer first: a stale timer must never fire a
// forced logout into a fresh session.
func (m *Manager) stopBackgroundLocked() {
	if m.stopTimer != nil {
		close(m.stopTimer)
		m.stopTimer = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
}

func (m *Manager) startTimerLocked() {
	stop := make(chan struct{})
	m.stopTimer = stop
	generation := m.generation

	go func() {
		ticker := time.NewTicker(m.settings.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.mu.Lock()
				live := m.generation == generation && m.stopTimer == stop
				m.mu.Unlock()
				if !live {
					return
				}
				m.CheckNow()
			}
		}
	}()
}

func (m *Manager) subscribeActivityLocked() {
	if m.collab.Activity == nil {
		return
	}
	unsubscribe, err := m.collab.Activity.Subscribe(m.MarkActivity)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to subscribe to activity source")
		return
	}
	m.unsubscribe = unsubscribe
}

// watchStoreLocked observes external storage changes when the store supports
// it. If another instance clears the token, this instance stops its own
// timers and emits an external termination, without a redundant redirect.
func (m *Manager) watchStoreLocked() {
	watcher, ok := m.collab.Store.(storage.Watcher)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := watcher.Watch(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to watch session storage")
		cancel()
		return
	}
	m.watchCancel = cancel
	generation := m.generation

	go func() {
		for range events {
			if m.storedToken() != "" {
				continue
			}
			m.mu.Lock()
			live := m.generation == generation
			if live {
				m.stopBackgroundLocked()
			}
			m.mu.Unlock()
			if live {
				m.emit(Termination{
					Reason:      "signed out in another instance",
					Kind:        TerminationExternal,
					RedirectURL: m.settings.LandingURL,
					At:          m.nowTime(),
				})
			}
			return
		}
	}()
}

func (m *Manager) storedToken() string {
	token, err := m.collab.Store.Get(storage.KeyToken)
	if err != nil {
		return ""
	}
	return token
}

func (m *Manager) lastActivity() (time.Time, bool) {
	raw, err := m.collab.Store.Get(storage.KeyLastActivity)
	if err != nil {
		return time.Time{}, false
	}
	return utils.TimeFromMillisString(raw)
}

func (m *Manager) providerAccessToken() string {
	provider, err := m.collab.Store.Get(storage.KeyIdentityProvider)
	if err != nil || provider == "" {
		return ""
	}
	token, err := m.collab.Store.Get(storage.ProviderTokenKey(provider))
	if err != nil {
		return ""
	}
	return token
}

// landingURL attaches the reason as a logout query parameter; the UI layer
// reads, displays, and strips it exactly once.
func (m *Manager) landingURL(reason string) string {
	parsed, err := url.Parse(m.settings.LandingURL)
	if err != nil {
		return m.settings.LandingURL + "?logout=" + url.QueryEscape(reason)
	}
	query := parsed.Query()
	query.Set("logout", reason)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func (m *Manager) emit(event Termination) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn().Str("reason", event.Reason).Msg("termination event dropped, channel full")
	}
}
