package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/moto-session/backend"
	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/internal/metrics"
	"github.com/jrsteele09/moto-session/token"
	"github.com/jrsteele09/moto-session/users"
	"github.com/rs/zerolog/log"
)

// Credentials is what a sign-in presents. With a password it is a normal
// login; without one, Token and RefreshToken are an already issued pair
// being installed after a server-side refresh.
type Credentials struct {
	Email        string
	Password     string
	Token        string
	RefreshToken string
}

func (c Credentials) internalRefresh() bool {
	return c.Password == "" && c.Token != ""
}

// LoginClient exchanges credentials with the backend.
type LoginClient interface {
	Login(ctx context.Context, email, password string) (*backend.TokenResponse, error)
}

// Authorizer turns credentials into a normalized user.
type Authorizer struct {
	client  LoginClient
	decoder *token.Decoder
}

func NewAuthorizer(client LoginClient, decoder *token.Decoder) *Authorizer {
	if decoder == nil {
		decoder = token.NewDecoder()
	}
	return &Authorizer{client: client, decoder: decoder}
}

// Authorize returns the user for creds, or an error wrapping
// ErrAuthenticationFailed or ErrMalformedToken. Backend failures are never
// distinguished from bad credentials.
func (a *Authorizer) Authorize(ctx context.Context, creds Credentials) (*users.User, error) {
	accessToken, refreshToken := creds.Token, creds.RefreshToken

	if !creds.internalRefresh() {
		if creds.Email == "" || creds.Password == "" {
			metrics.Logins.WithLabelValues("rejected").Inc()
			return nil, apperrors.ErrAuthenticationFailed
		}
		tokens, err := a.client.Login(ctx, creds.Email, creds.Password)
		if err != nil {
			event := log.Warn().Str("email", creds.Email)
			if status := backend.StatusCode(err); status != 0 {
				event = event.Int("status", status)
			} else {
				event = event.Err(err)
			}
			event.Msg("login rejected")
			metrics.Logins.WithLabelValues("rejected").Inc()
			return nil, apperrors.ErrAuthenticationFailed
		}
		accessToken, refreshToken = tokens.AccessToken, tokens.RefreshToken
	}

	claims, err := a.decoder.Decode(ctx, accessToken)
	if err != nil {
		log.Error().Err(err).Bool("internalRefresh", creds.internalRefresh()).Msg("backend issued an undecodable access token")
		metrics.Logins.WithLabelValues("malformed").Inc()
		if errors.Is(err, apperrors.ErrMalformedToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedToken, err)
	}
	if !claims.RolesPresent {
		log.Warn().Str("user", claims.ID).Msg("access token carries no roles claim")
	}

	metrics.Logins.WithLabelValues("success").Inc()
	return users.FromClaims(claims, creds.Email, accessToken, refreshToken), nil
}
