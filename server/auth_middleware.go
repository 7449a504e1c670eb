package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oauth-relay/handshake"
	"github.com/jrsteele09/go-oauth-relay/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the authenticated session
	ContextKeySession ContextKey = "session"
	// ContextKeyProviderUserID stores the bound provider user id
	ContextKeyProviderUserID ContextKey = "provider_user_id"
)

// RequireSessionAuth validates the session cookie and injects the session
// into the request context. Requests without a live session are redirected
// to the local login page.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(s.config.GetSessionCookieName())
			if err != nil {
				http.Redirect(w, r, RouteAuthLogin, http.StatusSeeOther)
				return
			}

			session, err := s.sessions.Authenticate(cookie.Value)
			if err != nil {
				http.Redirect(w, r, RouteAuthLogin+"?error=Session+expired", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireProviderIdentity gates provider-backed endpoints. Must be chained
// after RequireSessionAuth. A session that never completed the handshake
// lacks the provider-id claim; since these routes specifically need the
// provider capability, such requests are redirected into the OAuth challenge
// rather than rejected with a bare 403.
func (s *Server) RequireProviderIdentity() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, ok := sessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, RouteAuthLogin, http.StatusSeeOther)
				return
			}

			providerUserID, ok := session.Claim(handshake.ProviderIDClaim)
			if !ok || providerUserID == "" {
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyProviderUserID, providerUserID)
			next(w, r.WithContext(ctx))
		}
	}
}

func sessionFromContext(ctx context.Context) (*sessions.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(*sessions.Session)
	return session, ok
}

func providerUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyProviderUserID).(string)
	return id, ok
}
