package users

import (
	"github.com/jrsteele09/moto-session/internal/utils"
	"github.com/jrsteele09/moto-session/token"
)

// User is the normalized identity produced by a successful authorization.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	Roles        []string `json:"roles"`
	Token        string   `json:"-"` // Backend access token
	RefreshToken string   `json:"-"` // Backend refresh token
}

// FromClaims builds a user from decoded access-token claims. The display
// name is the username claim, falling back to the submitted email. The
// submitted email wins over the email claim.
func FromClaims(c *token.Claims, submittedEmail, accessToken, refreshToken string) *User {
	name := c.Username
	if name == "" {
		name = submittedEmail
	}
	email := submittedEmail
	if email == "" {
		email = c.Email
	}
	return &User{
		ID:           c.ID,
		Name:         name,
		Email:        email,
		FirstName:    c.FirstName,
		Roles:        utils.NonNil(c.Roles),
		Token:        accessToken,
		RefreshToken: refreshToken,
	}
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
