package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/provider"
)

type testProviderConfig struct {
	baseURL string
}

func (c testProviderConfig) GetProviderClientID() string     { return "client-id" }
func (c testProviderConfig) GetProviderClientSecret() string { return "client-secret" }
func (c testProviderConfig) GetAuthorizeEndpoint() string    { return c.baseURL + "/authorize" }
func (c testProviderConfig) GetTokenEndpoint() string        { return c.baseURL + "/api/token" }
func (c testProviderConfig) GetUserInfoEndpoint() string     { return c.baseURL + "/v1/me" }
func (c testProviderConfig) GetCallbackPath() string         { return "/oauth/callback" }
func (c testProviderConfig) GetProviderScopes() []string     { return []string{"user-read-private"} }
func (c testProviderConfig) GetProviderHTTPTimeout() time.Duration {
	return 2 * time.Second
}
func (c testProviderConfig) GetNominalTokenLifetime() time.Duration {
	return time.Hour
}

func newClient(upstream *httptest.Server) *provider.Client {
	return provider.New(testProviderConfig{baseURL: upstream.URL}, "http://relay.local")
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	client := provider.New(testProviderConfig{baseURL: "https://provider.example"}, "http://relay.local")

	authURL, err := url.Parse(client.AuthCodeURL("state-123"))
	require.NoError(t, err)
	require.Equal(t, "/authorize", authURL.Path)
	require.Equal(t, "state-123", authURL.Query().Get("state"))
	require.Equal(t, "client-id", authURL.Query().Get("client_id"))
	require.Equal(t, "http://relay.local/oauth/callback", authURL.Query().Get("redirect_uri"))
}

func TestUserInfoParsesIdentity(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/me", r.URL.Path)
		require.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","display_name":"John"}`))
	}))
	defer upstream.Close()

	info, err := newClient(upstream).UserInfo(context.Background(), "tok1")
	require.NoError(t, err)
	require.Equal(t, "u1", info.ID)
	require.Equal(t, "John", info.DisplayName)
}

func TestUserInfoRejectsNonSuccessStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	_, err := newClient(upstream).UserInfo(context.Background(), "tok1")
	require.ErrorIs(t, err, errors.ErrUpstreamFailed)
}

func TestUserInfoRequiresID(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name":"John"}`))
	}))
	defer upstream.Close()

	_, err := newClient(upstream).UserInfo(context.Background(), "tok1")
	require.Error(t, err)
}

func TestRefreshTokenSendsFormWithBasicAuth(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		clientID, clientSecret, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client-id", clientID)
		require.Equal(t, "client-secret", clientSecret)

		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "ref1", r.PostForm.Get("refresh_token"))
		require.Equal(t, "client-id", r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok2"}`))
	}))
	defer upstream.Close()

	resp, err := newClient(upstream).RefreshToken(context.Background(), "ref1")
	require.NoError(t, err)
	require.Equal(t, "tok2", resp.AccessToken)
	require.Empty(t, resp.RefreshToken)
	require.Zero(t, resp.ExpiresIn)
}

func TestRefreshTokenNonSuccessStatusFails(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer upstream.Close()

	_, err := newClient(upstream).RefreshToken(context.Background(), "ref1")
	require.ErrorIs(t, err, errors.ErrUpstreamFailed)
}

func TestRefreshTokenRequiresAccessToken(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	_, err := newClient(upstream).RefreshToken(context.Background(), "ref1")
	require.Error(t, err)
}

func TestExchangeReturnsRawExpiresIn(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok1","refresh_token":"ref1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer upstream.Close()

	exchanged, err := newClient(upstream).Exchange(context.Background(), "code-123")
	require.NoError(t, err)
	require.Equal(t, "tok1", exchanged.AccessToken)
	require.Equal(t, "ref1", exchanged.RefreshToken)
	require.Equal(t, "3600", exchanged.ExpiresIn)
}
