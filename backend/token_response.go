package backend

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenResponse is the body returned by both /auth/login and /auth/refresh.
type TokenResponse struct {
	// AccessToken is the short-lived JWT bearer credential.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: 15 minutes
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged at /auth/refresh for a new pair.
	// Security: Rotates on each use, the previous value becomes invalid
	// Lifespan: 1 hour
	RefreshToken string `json:"refresh_token"`
}

// OAuth2Token converts the pair into an oauth2.Token. expiry may be zero when
// unknown.
func (t TokenResponse) OAuth2Token(expiry time.Time) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}
}
