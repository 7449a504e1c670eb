package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-relay/handshake"
	"github.com/jrsteele09/go-oauth-relay/internal/errors"
)

// CallbackHandler completes the provider authorization: it validates the
// state, exchanges the code, and hands the fresh tokens to the handshake
// binder. Any failure means the whole redirect flow must restart.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}
		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		redirectTo, err := s.parseState(state)
		if err != nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}
		if redirectTo == "" {
			redirectTo = RouteIndex
		}

		var sessionID string
		if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
			sessionID = cookie.Value
		}

		exchanged, err := s.provider.Exchange(r.Context(), code)
		if err != nil {
			log.Err(err).Msg("Code exchange failed")
			http.Error(w, "Token exchange failed", http.StatusBadGateway)
			return
		}

		_, err = s.binder.Bind(r.Context(), sessionID, handshake.Tokens{
			AccessToken:  exchanged.AccessToken,
			RefreshToken: exchanged.RefreshToken,
			ExpiresIn:    exchanged.ExpiresIn,
		})
		switch {
		case err == nil:
		case errors.Is(err, errors.ErrNotAuthenticated) || errors.Is(err, errors.ErrSessionExpired):
			// The handshake only binds to an independently authenticated
			// local session
			redirectWithError(w, r, RouteAuthLogin, "Sign in before linking a provider account")
			return
		case errors.Is(err, errors.ErrHandshakeFailed):
			log.Err(err).Msg("Handshake failed")
			http.Error(w, "Failed authentication", http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("Failed to store token record")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, redirectTo, http.StatusSeeOther)
	}
}
