package config

import "time"

type SessionConfig interface {
	GetAccessTokenLifetime() time.Duration
	GetRefreshTokenLifetime() time.Duration
	GetRefreshBuffer() time.Duration
	GetSessionMaxAge() time.Duration
	GetSessionIdleTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetAccessTokenLifetime is the fixed access-token lifetime assumed at sign-in.
func (Session) GetAccessTokenLifetime() time.Duration {
	return 15 * time.Minute
}

// GetRefreshTokenLifetime is the fixed refresh-token lifetime assumed at sign-in.
func (Session) GetRefreshTokenLifetime() time.Duration {
	return 1 * time.Hour
}

// GetRefreshBuffer is how close to expiry an access token may get before a
// session read refreshes it.
func (Session) GetRefreshBuffer() time.Duration {
	return 60 * time.Second
}

func (Session) GetSessionMaxAge() time.Duration {
	return 1 * time.Hour
}

// GetSessionIdleTTL is how long the store keeps a record nobody reads or
// writes. It outlives the refresh-token expiry by a full max age, so an
// expired session is still readable in its errored form.
func (s Session) GetSessionIdleTTL() time.Duration {
	return s.GetRefreshTokenLifetime() + s.GetSessionMaxAge()
}
