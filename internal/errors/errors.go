package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session gateway
var (
	// Authentication errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrMalformedToken       = errors.New("malformed access token")

	// Refresh errors
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenError   = errors.New("refresh token error")
	ErrNoRefreshToken      = errors.New("no refresh token on session")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Organization errors
	ErrOrganizationNotFound = errors.New("organization not found")

	// General errors
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
