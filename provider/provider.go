// Package provider handles identity-provider access tokens: revocation on
// voluntary logout, and the OAuth2 flow configuration that produced them.
package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleRevokeURL is Google's published token revocation endpoint.
const GoogleRevokeURL = "https://oauth2.googleapis.com/revoke"

const defaultTimeout = 10 * time.Second

// Endpoint revokes access tokens against a provider's revocation endpoint
// with a form-encoded POST, the shape every mainstream provider accepts.
// The response body is ignored beyond success/failure.
type Endpoint struct {
	name       string
	revokeURL  string
	oauth      *oauth2.Config
	httpClient *http.Client
}

// Option defines a function type to modify the Endpoint instance.
type Option func(*Endpoint)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(e *Endpoint) {
		e.httpClient = httpClient
	}
}

// WithOAuthConfig attaches the flow configuration, enabling AuthCodeURL.
func WithOAuthConfig(config *oauth2.Config) Option {
	return func(e *Endpoint) {
		e.oauth = config
	}
}

// NewEndpoint creates a revoker for an arbitrary provider.
func NewEndpoint(name, revokeURL string, options ...Option) (*Endpoint, error) {
	if name == "" {
		return nil, errors.New("[provider.NewEndpoint] name is required")
	}
	if revokeURL == "" {
		return nil, errors.New("[provider.NewEndpoint] revokeURL is required")
	}

	e := &Endpoint{
		name:       name,
		revokeURL:  revokeURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// NewGoogle creates the Google revoker, paired with the standard Google
// OAuth2 endpoint configuration for starting login flows.
func NewGoogle(clientID, clientSecret, redirectURL string, options ...Option) (*Endpoint, error) {
	e, err := NewEndpoint("google", GoogleRevokeURL, options...)
	if err != nil {
		return nil, err
	}
	if e.oauth == nil {
		e.oauth = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}
	return e, nil
}

// Name returns the provider tag, matching the stored identityProvider value.
func (e *Endpoint) Name() string {
	return e.name
}

// Revoke invalidates the provider access token. Used during voluntary logout
// so third-party access does not outlive the session.
func (e *Endpoint) Revoke(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return errors.New("[Endpoint.Revoke] accessToken is required")
	}

	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "[Endpoint.Revoke] failed to build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Endpoint.Revoke] %s revocation request failed", e.name)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("[Endpoint.Revoke] %s revocation returned status %d", e.name, resp.StatusCode)
	}
	return nil
}

// AuthCodeURL returns the provider's authorization URL for starting a login
// flow, or the empty string when no flow configuration is attached.
func (e *Endpoint) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	if e.oauth == nil {
		return ""
	}
	return e.oauth.AuthCodeURL(state, opts...)
}
