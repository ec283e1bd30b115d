// Package tokentest mints access tokens for tests.
package tokentest

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const signingKey = "tokentest-signing-key"

// Mint signs claims with HS256. The gateway decodes without verifying, so
// the key is irrelevant to callers.
func Mint(t testing.TB, claims map[string]any) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("tokentest.Mint: %v", err)
	}
	return signed
}

// User mints a token for a user id with the given roles. A nil roles slice
// leaves the claim out entirely.
func User(t testing.TB, id string, roles []string) string {
	t.Helper()

	claims := map[string]any{"id": id, "username": "user-" + id, "first_name": "First" + id}
	if roles != nil {
		claims["roles"] = roles
	}
	return Mint(t, claims)
}
