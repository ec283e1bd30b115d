package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

type sessionTokenSource struct {
	ctx       context.Context
	svc       *Service
	sessionID string
}

// Token reads the Session View on every call. A degraded or unknown session
// yields an empty access token rather than an error, so requests go out
// with an empty bearer and the backend answers 401.
func (ts sessionTokenSource) Token() (*oauth2.Token, error) {
	view, err := ts.svc.Session(ts.ctx, ts.sessionID)
	if err != nil {
		return &oauth2.Token{TokenType: "Bearer"}, nil
	}
	return &oauth2.Token{AccessToken: view.User.Token, TokenType: "Bearer"}, nil
}

// TokenSource returns a token source bound to a session.
func (s *Service) TokenSource(ctx context.Context, sessionID string) oauth2.TokenSource {
	return sessionTokenSource{ctx: ctx, svc: s, sessionID: sessionID}
}

// APIClient returns an HTTP client that sends the session's access token as
// a bearer on every request. The source is not wrapped in a
// ReuseTokenSource so that a refresh is picked up on the next request.
func (s *Service) APIClient(ctx context.Context, sessionID string) *http.Client {
	base := s.apiHTTP.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport:     &oauth2.Transport{Source: s.TokenSource(ctx, sessionID), Base: base},
		Timeout:       s.apiHTTP.Timeout,
		CheckRedirect: s.apiHTTP.CheckRedirect,
	}
}
