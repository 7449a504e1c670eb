package refresh

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth-relay/internal/config"
	"github.com/jrsteele09/go-oauth-relay/provider"
	"github.com/jrsteele09/go-oauth-relay/token"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenRefresher performs the refresh_token grant against the provider's
// token endpoint.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*provider.RefreshResponse, error)
}

// Manager exchanges a stored refresh token for a new access token and
// updates the stored record.
type Manager struct {
	store           token.Repo
	provider        TokenRefresher
	nominalLifetime time.Duration
}

// NewManager creates a new refresh manager.
func NewManager(store token.Repo, refresher TokenRefresher, cfg config.ProviderConfig) *Manager {
	return &Manager{
		store:           store,
		provider:        refresher,
		nominalLifetime: cfg.GetNominalTokenLifetime(),
	}
}

// Refresh looks up the record for the given provider user id, performs the
// refresh exchange, and upserts the updated record. An identity with no
// stored record fails with ErrNoLinkedAccount before any outbound call. A
// failed exchange leaves the store untouched. The stored refresh token only
// changes when the provider issued a new one; the new expiry honours the
// response's expires_in and falls back to the configured nominal lifetime
// when the provider omits it.
func (m *Manager) Refresh(ctx context.Context, providerUserID string) (*token.Record, error) {
	record, err := m.store.Get(ctx, providerUserID)
	if err != nil {
		return nil, err
	}

	resp, err := m.provider.RefreshToken(ctx, record.RefreshToken)
	if err != nil {
		return nil, err
	}

	record.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		record.RefreshToken = resp.RefreshToken
	}
	lifetime := m.nominalLifetime
	if resp.ExpiresIn > 0 {
		lifetime = time.Duration(resp.ExpiresIn) * time.Second
	}
	record.Expires = NowTimeFunc().Add(lifetime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.store.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
