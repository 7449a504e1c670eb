package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos.
// The OAuth callback path is configured, not constant: see initRoutes.
const (
	RouteIndex = "/"

	// Starts the provider challenge (redirects to the provider's
	// authorization endpoint)
	RouteLogin = "/login"

	// Local session management
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Provider-backed endpoints, gated on a bound provider identity
	RouteProviderInfo = "/provider/info"
	RouteRefresh      = "/refresh"
)
