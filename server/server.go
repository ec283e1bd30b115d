package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/moto-session/auth"
	"github.com/jrsteele09/moto-session/backend"
	"github.com/jrsteele09/moto-session/betterauth"
	"github.com/jrsteele09/moto-session/internal/config"
	"github.com/jrsteele09/moto-session/sessions"
	"github.com/rs/zerolog/log"
)

// Services are the backends the gateway fronts. JWT is required when
// AUTH_PROVIDER is jwt; BetterAuth is required for betterauth and for the
// organization routes. API, when set, supplies the proxy's base URL and
// transport; otherwise both come from configuration.
type Services struct {
	JWT        *auth.Service
	BetterAuth *betterauth.Client
	API        *backend.Client
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	provider   sessions.Provider
	jwt        *auth.Service
	betterAuth *betterauth.Client
	apiBase    *url.URL
	apiHTTP    *http.Client
}

func New(config config.Config, services Services) (*Server, error) {
	api := services.API
	if api == nil {
		api = backend.New(config.GetAPIBaseURL(), backend.WithHTTPClient(backend.NewHTTPClient(config.GetHTTPTimeout())))
	}
	apiBase, err := url.Parse(api.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("[Server New] invalid API base URL: %w", err)
	}

	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		jwt:        services.JWT,
		betterAuth: services.BetterAuth,
		apiBase:    apiBase,
		apiHTTP:    api.HTTPClient(),
	}

	switch config.GetAuthProvider() {
	case ProviderJWT:
		if services.JWT == nil {
			return nil, fmt.Errorf("[Server New] %s provider selected but no JWT service configured", ProviderJWT)
		}
		s.provider = services.JWT
	case ProviderBetterAuth:
		if services.BetterAuth == nil {
			return nil, fmt.Errorf("[Server New] %s provider selected but no BetterAuth client configured", ProviderBetterAuth)
		}
		s.provider = betterauth.NewProvider(services.BetterAuth)
	default:
		return nil, fmt.Errorf("[Server New] unknown auth provider %q", config.GetAuthProvider())
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// Provider names, re-exported for callers wiring the server.
const (
	ProviderJWT        = config.ProviderJWT
	ProviderBetterAuth = config.ProviderBetterAuth
)

// Provider returns the active session provider.
func (s *Server) Provider() sessions.Provider {
	return s.provider
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
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
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
