package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware()...))

	// Local login & logout
	s.RegisterRouteFunc("GET "+RouteAuthLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// Provider challenge and callback
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.ChallengeHandler(), s.HTMLMiddleware(s.RequireSessionAuth())...))
	s.RegisterRouteFunc("GET "+s.config.GetCallbackPath(), ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleware()...))

	// Provider-backed endpoints: require a session that completed the
	// handshake. A session without the provider claim is bounced into the
	// challenge instead of rejected outright.
	s.RegisterRouteFunc("GET "+RouteProviderInfo, ChainMiddleware(s.ProviderInfoHandler(), s.APIMiddleware(s.RequireSessionAuth(), s.RequireProviderIdentity())...))
	s.RegisterRouteFunc("GET "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware(s.RequireSessionAuth(), s.RequireProviderIdentity())...))
}
