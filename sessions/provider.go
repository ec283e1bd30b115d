package sessions

import (
	"context"

	"golang.org/x/oauth2"
)

// Provider is the contract shared by the authentication backends. The
// handle is whatever the browser cookie carries: a gateway session id for
// the JWT provider, a BetterAuth session token for the cookie provider.
type Provider interface {
	Name() string
	CookieName() string
	GetSession(ctx context.Context, handle string) (*View, error)
	GetRoles(ctx context.Context, handle string) ([]string, error)
	Refresh(ctx context.Context, handle string) (*oauth2.Token, error)
}
