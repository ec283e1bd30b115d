package server

import (
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// apiTransport returns a transport that sends the Session View token as the
// bearer. Without a session, or with a degraded one, the bearer is empty and
// the REST API answers 401 on its own.
func (s *Server) apiTransport(r *http.Request) http.RoundTripper {
	handle := s.sessionHandle(r)
	if s.jwt != nil && s.provider.Name() == ProviderJWT {
		return s.jwt.APIClient(r.Context(), handle).Transport
	}

	var accessToken string
	if handle != "" {
		if view, err := s.provider.GetSession(r.Context(), handle); err == nil {
			accessToken = view.User.Token
		}
	}
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
		Base:   s.apiHTTP.Transport,
	}
}

// ProxyHandler forwards /api/proxy/{path...} to the REST API with the
// session's bearer token. Browser cookies are not forwarded.
func (s *Server) ProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proxy := &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(s.apiBase)
				pr.Out.URL.Path = strings.TrimRight(s.apiBase.Path, "/") + "/" + r.PathValue("path")
				pr.Out.URL.RawPath = ""
				pr.Out.Header.Del("Cookie")
				pr.Out.Header.Del("Authorization")
			},
			Transport: s.apiTransport(r),
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				log.Err(err).Str("path", r.URL.Path).Msg("proxy request failed")
				writeJSONError(w, "upstream_error", "REST API unavailable", http.StatusBadGateway)
			},
		}
		proxy.ServeHTTP(w, r)
	}
}
