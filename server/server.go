package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oauth-relay/handshake"
	"github.com/jrsteele09/go-oauth-relay/internal/config"
	"github.com/jrsteele09/go-oauth-relay/provider"
	"github.com/jrsteele09/go-oauth-relay/sessions"
	"github.com/jrsteele09/go-oauth-relay/token"
	"github.com/jrsteele09/go-oauth-relay/token/refresh"
	"github.com/jrsteele09/go-oauth-relay/users"
)

// Deps are the collaborators the HTTP surface is wired with.
type Deps struct {
	Sessions  *sessions.Service
	Users     users.UserRepo
	Tokens    token.Repo
	Provider  *provider.Client
	Binder    *handshake.Binder
	Refresher *refresh.Manager
}

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	sessions  *sessions.Service
	users     users.UserRepo
	tokens    token.Repo
	provider  *provider.Client
	binder    *handshake.Binder
	refresher *refresh.Manager
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.Tokens == nil || deps.Provider == nil ||
		deps.Binder == nil || deps.Refresher == nil {
		return nil, fmt.Errorf("[Server New] missing dependency")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		sessions:  deps.Sessions,
		users:     deps.Users,
		tokens:    deps.Tokens,
		provider:  deps.Provider,
		binder:    deps.Binder,
		refresher: deps.Refresher,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
