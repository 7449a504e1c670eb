// Package provider implements the HTTP client for the remote OAuth2
// provider. The authorization-code leg (authorize URL, code exchange) is
// delegated to golang.org/x/oauth2; the userinfo and refresh-token calls the
// provider requires are issued directly.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-oauth-relay/internal/config"
	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"golang.org/x/oauth2"
)

// Client talks to a single configured provider. All outbound calls carry the
// caller's context and are bounded by the configured HTTP timeout.
type Client struct {
	oauth            *oauth2.Config
	clientID         string
	clientSecret     string
	tokenEndpoint    string
	userInfoEndpoint string
	http             *http.Client
}

// New creates a provider client. baseURL is the relay's externally visible
// address, used to build the OAuth redirect URI.
func New(cfg config.ProviderConfig, baseURL string) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.GetProviderClientID(),
			ClientSecret: cfg.GetProviderClientSecret(),
			RedirectURL:  strings.TrimSuffix(baseURL, "/") + cfg.GetCallbackPath(),
			Scopes:       cfg.GetProviderScopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.GetAuthorizeEndpoint(),
				TokenURL: cfg.GetTokenEndpoint(),
			},
		},
		clientID:         cfg.GetProviderClientID(),
		clientSecret:     cfg.GetProviderClientSecret(),
		tokenEndpoint:    cfg.GetTokenEndpoint(),
		userInfoEndpoint: cfg.GetUserInfoEndpoint(),
		http:             &http.Client{Timeout: cfg.GetProviderHTTPTimeout()},
	}
}

// AuthCodeURL builds the provider authorization URL for the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchanged is the outcome of a successful code-for-token exchange.
// ExpiresIn carries the token endpoint's seconds-until-expiry value as the
// string it arrived as; the handshake binder parses it.
type Exchanged struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    string
}

// Exchange trades an authorization code for the provider's token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*Exchanged, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %w", errors.ErrUpstreamFailed, err)
	}
	return &Exchanged{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresInString(tok),
	}, nil
}

func expiresInString(tok *oauth2.Token) string {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return v
	default:
		return "0"
	}
}

// UserInfo is the provider's answer to "who am I". Only the id is required;
// the rest is carried through for display.
type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// UserInfoRaw fetches the userinfo document with the given access token and
// returns the raw body. A non-2xx status is an error.
func (c *Client) UserInfoRaw(ctx context.Context, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request: %w", errors.ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: userinfo returned status %d", errors.ErrUpstreamFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	return body, nil
}

// UserInfo fetches and decodes the userinfo document.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	body, err := c.UserInfoRaw(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("no id in userinfo response")
	}
	return &info, nil
}

// RefreshResponse is the token endpoint's answer to a refresh_token grant.
// Providers may omit expires_in and refresh_token on refresh.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// RefreshToken exchanges a stored refresh token for a new access token.
// The request authenticates with HTTP Basic client credentials, carries the
// client_id in the form body, and asks for a JSON response.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh request: %w", errors.ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: token endpoint returned status %d", errors.ErrUpstreamFailed, resp.StatusCode)
	}

	var rr RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if rr.Error != "" {
		return nil, fmt.Errorf("%w: %s - %s", errors.ErrUpstreamFailed, rr.Error, rr.ErrorDesc)
	}
	if rr.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in refresh response")
	}
	return &rr, nil
}
