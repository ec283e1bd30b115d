package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var proxyMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func (s *Server) initRoutes() {
	// SESSION
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))

	// ORGANIZATIONS
	s.RegisterRouteHandler("GET "+RouteOrgRole, ChainMiddleware(s.ActiveRoleHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOrgActive, ChainMiddleware(s.SwitchOrganizationHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOrgInfo, ChainMiddleware(s.OrganizationHandler(), s.APIMiddleware()...))

	// REST API
	for _, method := range proxyMethods {
		s.RegisterRouteHandler(method+" "+RouteAPIProxy, ChainMiddleware(s.ProxyHandler(), s.APIMiddleware()...))
	}

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	// Pages
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
	s.RegisterRouteFunc("GET "+RouteHealthz, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "provider": s.provider.Name()})
	})
}
