// Package api implements the backend auth API contract: /login, /logout and
// /profile against the dashboard's server, with bearer authentication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	autherrors "github.com/leadpilot/go-session-client/internal/errors"
	"github.com/leadpilot/go-session-client/session"
)

const defaultTimeout = 15 * time.Second

var _ session.Backend = (*Client)(nil)

// Client talks to the backend auth API. It satisfies session.Backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger replaces the default global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a backend API client rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Credentials is the successful login response: the bearer credential plus
// the initial profile snapshot.
type Credentials struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// Login exchanges direct credentials for a session token.
// Rejected credentials surface as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] failed to encode request")
	}

	resp, err := c.post(ctx, "/login", "", body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] request failed")
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrap(autherrors.ErrInvalidCredentials, "[Client.Login]")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.Errorf("[Client.Login] unexpected status %d", resp.StatusCode)
	}

	credentials := &Credentials{}
	if err := json.NewDecoder(resp.Body).Decode(credentials); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] failed to decode response")
	}
	if credentials.Token == "" {
		return nil, errors.New("[Client.Login] response carried no token")
	}
	return credentials, nil
}

// NotifyLogout posts the logout notification carrying the user-visible
// reason. Any 2xx is success; callers treat failures as best-effort.
func (c *Client) NotifyLogout(ctx context.Context, token, reason string) error {
	body, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return errors.Wrap(err, "[Client.NotifyLogout] failed to encode request")
	}

	resp, err := c.post(ctx, "/logout", token, body)
	if err != nil {
		return errors.Wrap(err, "[Client.NotifyLogout] request failed")
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("[Client.NotifyLogout] unexpected status %d", resp.StatusCode)
	}
	c.logger.Debug().Str("reason", reason).Msg("logout notification delivered")
	return nil
}

// Profile fetches the current profile snapshot. A 401 or 403 wraps
// session.ErrInvalidToken, the signal callers must escalate to forced logout.
func (c *Client) Profile(ctx context.Context, token string) (*session.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/profile", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Profile] failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Profile] request failed")
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(session.ErrInvalidToken, "[Client.Profile] status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Errorf("[Client.Profile] unexpected status %d", resp.StatusCode)
	}

	user := &session.User{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, errors.Wrap(err, "[Client.Profile] failed to decode response")
	}
	return user, nil
}

func (c *Client) post(ctx context.Context, path, token string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
