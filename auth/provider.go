package auth

import (
	"context"

	"github.com/jrsteele09/moto-session/sessions"
	"golang.org/x/oauth2"
)

func (s *Service) Name() string {
	return ProviderName
}

func (s *Service) CookieName() string {
	return s.cfg.GetSessionCookieName()
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (*sessions.View, error) {
	return s.Session(ctx, sessionID)
}

// GetRoles returns the roles of the Session View. A degraded session has
// none.
func (s *Service) GetRoles(ctx context.Context, sessionID string) ([]string, error) {
	view, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view.User.Roles, nil
}

func (s *Service) Refresh(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	if tok := s.RefreshNow(ctx, sessionID); tok != nil {
		return tok, nil
	}
	return nil, ErrRefreshTokenError
}
