package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/moto-session/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the Session View of the request
	ContextKeySession ContextKey = "session"
)

// RequireSession is the page guard. A request whose Session View has no
// access token, whether signed out, expired or degraded after a failed
// refresh, is redirected to the login page.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			view, err := s.provider.GetSession(r.Context(), s.sessionHandle(r))
			if err != nil || !view.Authenticated() {
				http.Redirect(w, r, RouteLogin+"?callbackUrl="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, view)
			next(w, r.WithContext(ctx))
		}
	}
}

// SessionFromContext returns the view stored by RequireSession.
func SessionFromContext(ctx context.Context) (*sessions.View, bool) {
	view, ok := ctx.Value(ContextKeySession).(*sessions.View)
	return view, ok
}
