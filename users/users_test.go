package users_test

import (
	"testing"

	"github.com/jrsteele09/moto-session/token"
	"github.com/jrsteele09/moto-session/users"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	c := &token.Claims{ID: "7", Username: "jdoe", FirstName: "Jane", Email: "claims@moto.test", Roles: []string{"educator"}}

	u := users.FromClaims(c, "jane@moto.test", "a.b.c", "r-1")
	require.Equal(t, "7", u.ID)
	require.Equal(t, "jdoe", u.Name)
	require.Equal(t, "jane@moto.test", u.Email)
	require.Equal(t, "Jane", u.FirstName)
	require.Equal(t, "a.b.c", u.Token)
	require.Equal(t, "r-1", u.RefreshToken)
	require.True(t, u.HasRole("educator"))
	require.False(t, u.HasRole("admin"))
}

func TestFromClaimsFallbacks(t *testing.T) {
	u := users.FromClaims(&token.Claims{ID: "8"}, "jane@moto.test", "a.b.c", "r-1")
	require.Equal(t, "jane@moto.test", u.Name)
	require.NotNil(t, u.Roles)
	require.Empty(t, u.Roles)

	u = users.FromClaims(&token.Claims{ID: "9", Email: "claims@moto.test"}, "", "a.b.c", "")
	require.Equal(t, "claims@moto.test", u.Email)
}
