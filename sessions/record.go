package sessions

import (
	"slices"
	"time"
)

// ErrorKind is the refresh failure state carried by a token record.
type ErrorKind string

const (
	ErrorNone                ErrorKind = ""
	ErrorRefreshTokenExpired ErrorKind = "RefreshTokenExpired"
	ErrorRefreshTokenError   ErrorKind = "RefreshTokenError"
)

// TokenRecord is the server-side state of one signed-in browser session.
// Expiries change only on sign-in or a successful refresh. Error and
// NeedsRefresh are cleared only by the same two events.
type TokenRecord struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	FirstName          string    `json:"firstName"`
	Token              string    `json:"token"`
	RefreshToken       string    `json:"refreshToken"`
	Roles              []string  `json:"roles"`
	TokenExpiry        time.Time `json:"tokenExpiry"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiry"`
	Error              ErrorKind `json:"error,omitempty"`
	NeedsRefresh       bool      `json:"needsRefresh,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so stores never share slices with callers.
func (r *TokenRecord) Clone() *TokenRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Roles = slices.Clone(r.Roles)
	return &c
}

// Failed reports whether the last refresh attempt left the record errored.
func (r *TokenRecord) Failed() bool {
	return r.Error != ErrorNone
}

// SetFailure marks the record errored without touching its tokens.
func (r *TokenRecord) SetFailure(kind ErrorKind) {
	r.Error = kind
	r.NeedsRefresh = true
}

// SetTokens installs a fresh token pair and resets both expiries.
func (r *TokenRecord) SetTokens(token, refreshToken string, now time.Time, accessLifetime, refreshLifetime time.Duration) {
	r.Token = token
	if refreshToken != "" {
		r.RefreshToken = refreshToken
	}
	r.TokenExpiry = now.Add(accessLifetime)
	r.RefreshTokenExpiry = now.Add(refreshLifetime)
	r.Error = ErrorNone
	r.NeedsRefresh = false
}
