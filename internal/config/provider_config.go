package config

import (
	"strconv"
	"strings"
	"time"
)

// ProviderConfig describes the remote OAuth2 provider the relay talks to.
// Defaults target Spotify; every value can be overridden through the
// environment so tests can point the relay at a stub provider.
type ProviderConfig interface {
	GetProviderClientID() string
	GetProviderClientSecret() string
	GetAuthorizeEndpoint() string
	GetTokenEndpoint() string
	GetUserInfoEndpoint() string
	GetCallbackPath() string
	GetProviderScopes() []string
	GetProviderHTTPTimeout() time.Duration
	GetNominalTokenLifetime() time.Duration
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetProviderClientID() string {
	return GetEnv("PROVIDER_CLIENT_ID", "")
}

func (Provider) GetProviderClientSecret() string {
	return GetEnv("PROVIDER_CLIENT_SECRET", "")
}

func (Provider) GetAuthorizeEndpoint() string {
	return GetEnv("PROVIDER_AUTHORIZE_ENDPOINT", "https://accounts.spotify.com/authorize")
}

func (Provider) GetTokenEndpoint() string {
	return GetEnv("PROVIDER_TOKEN_ENDPOINT", "https://accounts.spotify.com/api/token")
}

func (Provider) GetUserInfoEndpoint() string {
	return GetEnv("PROVIDER_USERINFO_ENDPOINT", "https://api.spotify.com/v1/me")
}

func (Provider) GetCallbackPath() string {
	return GetEnv("PROVIDER_CALLBACK_PATH", "/oauth/callback")
}

func (Provider) GetProviderScopes() []string {
	scopes := GetEnv("PROVIDER_SCOPES", "user-read-private")
	return strings.Fields(scopes)
}

func (Provider) GetProviderHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("PROVIDER_HTTP_TIMEOUT_SECONDS", "10"))
	if err != nil || seconds <= 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}

// GetNominalTokenLifetime is the access token lifetime assumed when the
// provider's refresh response omits expires_in.
func (Provider) GetNominalTokenLifetime() time.Duration {
	seconds, err := strconv.Atoi(GetEnv("PROVIDER_NOMINAL_TOKEN_LIFETIME_SECONDS", "3600"))
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return time.Duration(seconds) * time.Second
}
