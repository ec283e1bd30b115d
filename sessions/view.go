package sessions

import (
	"time"

	"github.com/jrsteele09/moto-session/internal/utils"
)

// ViewUser is the user block of a Session View.
type ViewUser struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	Roles        []string `json:"roles"`
}

// View is the client-visible projection of a token record.
type View struct {
	User    ViewUser  `json:"user"`
	Error   ErrorKind `json:"error,omitempty"`
	Expires time.Time `json:"expires"`
}

// Project builds the Session View for a record. An errored record, or one
// without an access token, fails closed: tokens and roles are blanked and
// only the identity fields survive.
func Project(r *TokenRecord, maxAge time.Duration) *View {
	v := &View{
		User: ViewUser{
			ID:           r.UserID,
			Name:         r.Name,
			Email:        r.Email,
			FirstName:    r.FirstName,
			Token:        r.Token,
			RefreshToken: r.RefreshToken,
			Roles:        utils.NonNil(r.Roles),
		},
		Error:   r.Error,
		Expires: r.UpdatedAt.Add(maxAge),
	}
	if r.Failed() || r.Token == "" {
		v.User.Token = ""
		v.User.RefreshToken = ""
		v.User.Roles = []string{}
	}
	return v
}

// Authenticated reports whether the view carries a usable access token.
func (v *View) Authenticated() bool {
	return v != nil && v.User.Token != ""
}

// HasRole reports whether the view grants the role. A degraded view grants
// nothing.
func (v *View) HasRole(role string) bool {
	if v == nil {
		return false
	}
	for _, r := range v.User.Roles {
		if r == role {
			return true
		}
	}
	return false
}
