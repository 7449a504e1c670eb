// Package handshake finalises a completed OAuth authorization into a durable
// token binding: it links the provider identity to the local session and
// writes the token record.
package handshake

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/provider"
	"github.com/jrsteele09/go-oauth-relay/sessions"
	"github.com/jrsteele09/go-oauth-relay/token"
)

// ProviderIDClaim names the session claim that carries the bound provider
// user id.
const ProviderIDClaim = "provider-id"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// UserInfoClient resolves the provider's own user id for a fresh access
// token ("who am I").
type UserInfoClient interface {
	UserInfo(ctx context.Context, accessToken string) (*provider.UserInfo, error)
}

// ClaimWriter attaches a claim to a live session.
type ClaimWriter interface {
	AddClaim(sessionID, name, value string) error
}

// Tokens is what the code-exchange step delivers on success. ExpiresIn is
// the token endpoint's seconds-until-expiry value, still string-encoded.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    string
}

// Binder binds a completed handshake to an authenticated local session.
// It is invoked exactly once per completed provider authorization.
type Binder struct {
	authn  sessions.Authenticator
	claims ClaimWriter
	whoami UserInfoClient
	store  token.Repo
}

func NewBinder(authn sessions.Authenticator, claims ClaimWriter, whoami UserInfoClient, store token.Repo) *Binder {
	return &Binder{
		authn:  authn,
		claims: claims,
		whoami: whoami,
		store:  store,
	}
}

// Bind verifies the local session, resolves the provider identity behind the
// fresh access token, upserts the token record keyed by that identity, and
// marks the session with the provider-id claim. On any failure before the
// upsert nothing is written; the caller must restart the OAuth flow.
func (b *Binder) Bind(ctx context.Context, sessionID string, tok Tokens) (string, error) {
	// The session is re-verified here rather than trusted from the
	// in-flight callback context.
	if _, err := b.authn.Authenticate(sessionID); err != nil {
		return "", err
	}

	info, err := b.whoami.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrHandshakeFailed, err)
	}

	expiresIn, err := strconv.Atoi(tok.ExpiresIn)
	if err != nil {
		return "", fmt.Errorf("%w: invalid expires_in %q", errors.ErrHandshakeFailed, tok.ExpiresIn)
	}
	expires := NowTimeFunc().Add(time.Duration(expiresIn) * time.Second)

	record, err := b.store.Get(ctx, info.ID)
	if errors.Is(err, errors.ErrNoLinkedAccount) {
		record = &token.Record{UserID: info.ID}
	} else if err != nil {
		return "", err
	}
	record.AccessToken = tok.AccessToken
	record.RefreshToken = tok.RefreshToken
	record.Expires = expires

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := b.store.Upsert(ctx, record); err != nil {
		return "", err
	}

	// The claim write can still fail if the session expired since the
	// check above. The token record then exists without a session binding
	// and stays unreachable until the next completed handshake overwrites
	// it; the claim is never written without a stored record.
	if err := b.claims.AddClaim(sessionID, ProviderIDClaim, info.ID); err != nil {
		return "", errors.Wrapf(err, "failed to attach %s claim", ProviderIDClaim)
	}
	return info.ID, nil
}
