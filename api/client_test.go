package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/leadpilot/go-session-client/api"
	autherrors "github.com/leadpilot/go-session-client/internal/errors"
	"github.com/leadpilot/go-session-client/session"
)

const (
	testToken     = "abc"
	testUserEmail = "john.doe@example.com"
	testPassword  = "password123"
)

type recordedRequest struct {
	method        string
	path          string
	authorization string
	contentType   string
	body          map[string]string
}

func newTestServer(t *testing.T, status int, response any) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	requests := &[]recordedRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded := recordedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			contentType:   r.Header.Get("Content-Type"),
		}
		if r.Body != nil {
			body := map[string]string{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			recorded.body = body
		}
		*requests = append(*requests, recorded)

		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(server.Close)
	return server, requests
}

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	client, err := api.New(baseURL, api.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := api.New("")
	require.ErrorContains(t, err, "baseURL is required")
}

func TestLogin(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, api.Credentials{
		Token: testToken,
		User:  &session.User{Email: testUserEmail, Tier: "starter"},
	})
	client := newClient(t, server.URL)

	credentials, err := client.Login(context.Background(), testUserEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, testToken, credentials.Token)
	require.Equal(t, testUserEmail, credentials.User.Email)

	require.Len(t, *requests, 1)
	request := (*requests)[0]
	require.Equal(t, http.MethodPost, request.method)
	require.Equal(t, "/login", request.path)
	require.Equal(t, testUserEmail, request.body["email"])
	require.Equal(t, testPassword, request.body["password"])
	require.Empty(t, request.authorization)
}

func TestLoginRejectedCredentials(t *testing.T) {
	server, _ := newTestServer(t, http.StatusUnauthorized, nil)
	client := newClient(t, server.URL)

	_, err := client.Login(context.Background(), testUserEmail, "wrong")
	require.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
}

func TestLoginWithoutToken(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, api.Credentials{})
	client := newClient(t, server.URL)

	_, err := client.Login(context.Background(), testUserEmail, testPassword)
	require.ErrorContains(t, err, "no token")
}

func TestNotifyLogout(t *testing.T) {
	server, requests := newTestServer(t, http.StatusNoContent, nil)
	client := newClient(t, server.URL)

	err := client.NotifyLogout(context.Background(), testToken, "Signed out")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	request := (*requests)[0]
	require.Equal(t, http.MethodPost, request.method)
	require.Equal(t, "/logout", request.path)
	require.Equal(t, "Bearer "+testToken, request.authorization)
	require.Equal(t, "application/json", request.contentType)
	require.Equal(t, "Signed out", request.body["reason"])
}

func TestNotifyLogoutNonSuccessStatus(t *testing.T) {
	server, _ := newTestServer(t, http.StatusBadGateway, nil)
	client := newClient(t, server.URL)

	err := client.NotifyLogout(context.Background(), testToken, "Signed out")
	require.ErrorContains(t, err, "status 502")
}

func TestProfile(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, session.User{
		Email:     testUserEmail,
		FirstName: "John",
		LastName:  "Doe",
		Company:   "Acme",
		Tier:      "pro",
	})
	client := newClient(t, server.URL)

	user, err := client.Profile(context.Background(), testToken)
	require.NoError(t, err)
	require.Equal(t, testUserEmail, user.Email)
	require.Equal(t, "pro", user.Tier)

	require.Len(t, *requests, 1)
	request := (*requests)[0]
	require.Equal(t, http.MethodGet, request.method)
	require.Equal(t, "/profile", request.path)
	require.Equal(t, "Bearer "+testToken, request.authorization)
}

func TestProfileInvalidTokenStatuses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server, _ := newTestServer(t, status, nil)
		client := newClient(t, server.URL)

		_, err := client.Profile(context.Background(), testToken)
		require.ErrorIs(t, err, session.ErrInvalidToken, "status %d", status)
	}
}

func TestProfileServerError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusInternalServerError, nil)
	client := newClient(t, server.URL)

	_, err := client.Profile(context.Background(), testToken)
	require.ErrorContains(t, err, "status 500")
	require.NotErrorIs(t, err, session.ErrInvalidToken)
}
