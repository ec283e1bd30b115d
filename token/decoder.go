package token

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/internal/utils"
)

// Decoder extracts claims from backend-issued access tokens.
//
// By default it decodes the payload without checking the signature: the
// token has just been received over TLS from the backend the gateway already
// trusts. When a verifier is configured the signature, issuer and expiry are
// checked before any claim is read.
type Decoder struct {
	verifier *oidc.IDTokenVerifier
	parser   *jwt.Parser
}

type DecoderOption func(*Decoder)

// WithVerifier enables signature verification.
func WithVerifier(v *oidc.IDTokenVerifier) DecoderOption {
	return func(d *Decoder) {
		d.verifier = v
	}
}

func NewDecoder(options ...DecoderOption) *Decoder {
	d := &Decoder{parser: jwt.NewParser()}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// NewOIDCVerifier discovers the issuer's JWKS and returns a verifier for
// access tokens. Access tokens carry no client audience, so the client ID
// check is skipped.
func NewOIDCVerifier(ctx context.Context, issuerURL string) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return provider.Verifier(&oidc.Config{SkipClientIDCheck: true}), nil
}

// Verifying reports whether signatures are checked.
func (d *Decoder) Verifying() bool {
	return d.verifier != nil
}

// Decode splits the token into its three segments and decodes the middle
// one. Every failure wraps ErrMalformedToken.
func (d *Decoder) Decode(ctx context.Context, rawToken string) (*Claims, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "expected 3 segments, got %d", len(parts))
	}
	if parts[1] == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "empty payload segment")
	}

	if d.verifier != nil {
		if _, err := d.verifier.Verify(ctx, rawToken); err != nil {
			return nil, fmt.Errorf("%w: signature verification: %v", apperrors.ErrMalformedToken, err)
		}
	}

	payload, err := d.decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", apperrors.ErrMalformedToken, err)
	}

	var raw jwt.MapClaims
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: unmarshal payload: %v", apperrors.ErrMalformedToken, err)
	}

	claims := &Claims{
		ID:        utils.ClaimString(raw["id"]),
		Username:  utils.ClaimString(raw["username"]),
		FirstName: utils.ClaimString(raw["first_name"]),
		Email:     utils.ClaimString(raw["email"]),
		Raw:       raw,
	}
	if claims.ID == "" {
		claims.ID = utils.ClaimString(raw["sub"])
	}
	if claims.ID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMalformedToken, "payload has no id")
	}

	if r, ok := raw["roles"]; ok && r != nil {
		claims.RolesPresent = true
		switch roles := r.(type) {
		case []any:
			claims.Roles = utils.ToStringSlice(roles)
		case string:
			claims.Roles = []string{roles}
		default:
			claims.Roles = []string{}
		}
	}

	return claims, nil
}

// decodeSegment accepts base64url (the JWT encoding) and falls back to
// standard base64 for tokens minted by non-conforming encoders.
func (d *Decoder) decodeSegment(seg string) ([]byte, error) {
	b, err := d.parser.DecodeSegment(seg)
	if err == nil {
		return b, nil
	}
	if b, stdErr := base64.StdEncoding.DecodeString(seg); stdErr == nil {
		return b, nil
	}
	if b, stdErr := base64.RawStdEncoding.DecodeString(seg); stdErr == nil {
		return b, nil
	}
	return nil, err
}
