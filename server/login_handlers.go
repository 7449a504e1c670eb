package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-relay/users"
)

const contentTypeHTML = "text/html; charset=utf-8"

var loginPageTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - Sign in</title></head>
<body>
  <h1>{{.AppName}}</h1>
  {{if .Error}}<p style="color:red">{{.Error}}</p>{{end}}
  <form method="POST" action="/auth/login">
    <label>Email <input type="email" name="email" value="{{.Email}}"></label>
    <label>Password <input type="password" name="password"></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>`))

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
}

// LoginPageHandler renders the local sign-in form.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
			Email:   r.URL.Query().Get("email"),
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginPageTemplate.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login page")
		}
	}
}

// LoginSubmissionHandler validates local credentials and issues the session
// cookie the OAuth handshake is later bound to.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, RouteAuthLogin, "Invalid form submission")
			return
		}
		email := r.FormValue("email")
		password := r.FormValue("password")
		if email == "" || password == "" {
			redirectWithError(w, r, RouteAuthLogin, "Email and password are required")
			return
		}

		user, err := s.users.GetByEmail(email)
		if err != nil || !users.CheckPasswordHash(password, user.PasswordHash) {
			// Same message for unknown user and bad password
			redirectWithError(w, r, RouteAuthLogin, "Invalid credentials")
			return
		}

		session, err := s.sessions.Create(user.Email)
		if err != nil {
			log.Err(err).Msg("Failed to create session")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		s.SetSessionCookie(w, r, session.ID, int(s.config.GetSessionTTL().Seconds()))
		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}

// LogoutHandler ends the local session.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
			if err := s.sessions.Destroy(cookie.Value); err != nil {
				log.Err(err).Msg("Failed to destroy session")
			}
		}
		s.ClearSessionCookie(w, r)
		http.Redirect(w, r, RouteAuthLogin, http.StatusSeeOther)
	}
}

// ChallengeHandler starts the provider authorization flow for an
// authenticated local session.
func (s *Server) ChallengeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURI := r.URL.Query().Get("redirect_uri")
		if redirectURI == "" {
			redirectURI = RouteIndex
		}

		state, err := s.buildState(redirectURI)
		if err != nil {
			log.Err(err).Msg("Failed to build state token")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, s.provider.AuthCodeURL(state), http.StatusSeeOther)
	}
}
