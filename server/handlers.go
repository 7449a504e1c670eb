package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type claimValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IndexHandler lists the claims attached to the caller's session. An
// unauthenticated request gets an empty list rather than a rejection.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := make([]claimValue, 0)

		if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
			if session, err := s.sessions.Authenticate(cookie.Value); err == nil {
				claims = append(claims, claimValue{Type: "email", Value: session.UserEmail})
				for name, value := range session.Claims {
					claims = append(claims, claimValue{Type: name, Value: value})
				}
			}
		}

		writeJSON(w, http.StatusOK, claims)
	}
}

// ProviderInfoHandler is the authorized passthrough query: it reads the
// stored access token for the bound identity and forwards the provider's
// userinfo document.
func (s *Server) ProviderInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerUserID, ok := providerUserIDFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		record, err := s.tokens.Get(r.Context(), providerUserID)
		if errors.Is(err, errors.ErrNoLinkedAccount) {
			http.Error(w, "No token for this user", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Err(err).Msg("Failed to read token record")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		body, err := s.provider.UserInfoRaw(r.Context(), record.AccessToken)
		if err != nil {
			log.Err(err).Msg("Provider info request failed")
			http.Error(w, "Failed to query provider", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// RefreshHandler exchanges the stored refresh token for a new access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerUserID, ok := providerUserIDFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		}

		record, err := s.refresher.Refresh(r.Context(), providerUserID)
		switch {
		case err == nil:
		case errors.Is(err, errors.ErrNoLinkedAccount):
			http.Error(w, "No token for this user", http.StatusBadRequest)
			return
		case errors.Is(err, errors.ErrUpstreamFailed):
			log.Err(err).Msg("Refresh exchange failed")
			http.Error(w, "Failed to refresh token", http.StatusBadGateway)
			return
		default:
			log.Err(err).Msg("Failed to update token record")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": record.UserID,
			"expires": record.Expires,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}
