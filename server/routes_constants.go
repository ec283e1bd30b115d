package server

// Route path constants
// All gateway routes are defined here to ensure consistency and prevent typos
const (
	// Session routes
	RouteAuthLogin   = "/api/auth/login"
	RouteAuthSession = "/api/auth/session"
	RouteAuthRefresh = "/api/auth/refresh"
	RouteAuthLogout  = "/api/auth/logout"
	RouteAuthSignup  = "/api/auth/signup-with-org"

	// Organization routes (BetterAuth)
	RouteOrgRole   = "/api/org/role"
	RouteOrgInfo   = "/api/org/{id}"
	RouteOrgActive = "/api/org/active"

	// REST API passthrough
	RouteAPIProxy = "/api/proxy/{path...}"

	// Pages
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"

	// Operations
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"
)
