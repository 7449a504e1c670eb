// Package cacherepo stores sessions in an expiring in-memory cache.
package cacherepo

import (
	"maps"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/sessions"
)

var _ sessions.Repo = (*CacheRepo)(nil)

// CacheRepo keeps sessions in a go-cache with per-entry TTL derived from the
// session's own expiry, so abandoned sessions evict themselves.
type CacheRepo struct {
	c *gocache.Cache
}

func New(defaultTTL time.Duration) *CacheRepo {
	return &CacheRepo{c: gocache.New(defaultTTL, time.Minute)}
}

func (r *CacheRepo) Upsert(sessionID string, session sessions.Session) error {
	ttl := gocache.DefaultExpiration
	if until := time.Until(session.ExpiresAt); until > 0 {
		ttl = until
	}
	// Sessions are stored by value, but the Claims map would still be
	// shared with the caller; clone on both sides so a claim write never
	// races a concurrent read of a previously returned session.
	session.Claims = maps.Clone(session.Claims)
	r.c.Set(sessionID, session, ttl)
	return nil
}

func (r *CacheRepo) Get(sessionID string) (sessions.Session, error) {
	v, ok := r.c.Get(sessionID)
	if !ok {
		return sessions.Session{}, errors.ErrSessionNotFound
	}
	session, ok := v.(sessions.Session)
	if !ok {
		return sessions.Session{}, errors.ErrSessionNotFound
	}
	session.Claims = maps.Clone(session.Claims)
	return session, nil
}

func (r *CacheRepo) Delete(sessionID string) error {
	r.c.Delete(sessionID)
	return nil
}
