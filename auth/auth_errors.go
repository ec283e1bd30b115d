package auth

import apperrors "github.com/jrsteele09/moto-session/internal/errors"

// Errors callers outside the module can match with errors.Is.
var (
	ErrAuthenticationFailed = apperrors.ErrAuthenticationFailed
	ErrMalformedToken       = apperrors.ErrMalformedToken
	ErrSessionNotFound      = apperrors.ErrSessionNotFound
	ErrRefreshTokenError    = apperrors.ErrRefreshTokenError
)
