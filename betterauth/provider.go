package betterauth

import (
	"context"

	"github.com/jrsteele09/moto-session/internal/config"
	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/internal/utils"
	"github.com/jrsteele09/moto-session/sessions"
	"golang.org/x/oauth2"
)

// Provider exposes BetterAuth sessions through the shared provider
// interface. The handle is the BetterAuth session token.
type Provider struct {
	client *Client
}

var _ sessions.Provider = (*Provider)(nil)

func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string {
	return config.ProviderBetterAuth
}

func (p *Provider) CookieName() string {
	return p.client.CookieName()
}

// GetSession builds a Session View from the BetterAuth session and the
// active role. The view's token is the session token itself, which the REST
// API accepts in place of a JWT. There is no refresh token.
func (p *Provider) GetSession(ctx context.Context, handle string) (*sessions.View, error) {
	s := p.client.Session(handle)
	info, err := s.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, apperrors.ErrSessionNotFound
	}

	roles, err := p.roles(ctx, s)
	if err != nil {
		return nil, err
	}
	return &sessions.View{
		User: sessions.ViewUser{
			ID:        info.User.ID,
			Name:      info.User.Name,
			Email:     info.User.Email,
			FirstName: firstName(info.User.Name),
			Token:     handle,
			Roles:     roles,
		},
		Expires: info.Session.ExpiresAt,
	}, nil
}

func (p *Provider) GetRoles(ctx context.Context, handle string) ([]string, error) {
	return p.roles(ctx, p.client.Session(handle))
}

// Refresh is not supported: BetterAuth extends its own sessions.
func (p *Provider) Refresh(context.Context, string) (*oauth2.Token, error) {
	return nil, apperrors.ErrUnsupported
}

func (p *Provider) roles(ctx context.Context, s *Session) ([]string, error) {
	role, err := s.GetActiveRole(ctx)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return utils.NonNil(nil), nil
	}
	return []string{role.String()}, nil
}

func firstName(name string) string {
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}
