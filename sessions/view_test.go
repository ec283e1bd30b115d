package sessions_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/moto-session/sessions"
	"github.com/stretchr/testify/require"
)

func testRecord() *sessions.TokenRecord {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &sessions.TokenRecord{
		ID:                 "sid-1",
		UserID:             "7",
		Name:               "jdoe",
		Email:              "jane@moto.test",
		FirstName:          "Jane",
		Token:              "a.b.c",
		RefreshToken:       "r-1",
		Roles:              []string{"educator"},
		TokenExpiry:        now.Add(15 * time.Minute),
		RefreshTokenExpiry: now.Add(time.Hour),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestProjectHealthy(t *testing.T) {
	r := testRecord()
	v := sessions.Project(r, time.Hour)

	require.True(t, v.Authenticated())
	require.Equal(t, "7", v.User.ID)
	require.Equal(t, "a.b.c", v.User.Token)
	require.Equal(t, "r-1", v.User.RefreshToken)
	require.True(t, v.HasRole("educator"))
	require.Equal(t, sessions.ErrorNone, v.Error)
	require.Equal(t, r.UpdatedAt.Add(time.Hour), v.Expires)
}

func TestProjectFailsClosed(t *testing.T) {
	for _, kind := range []sessions.ErrorKind{sessions.ErrorRefreshTokenExpired, sessions.ErrorRefreshTokenError} {
		t.Run(string(kind), func(t *testing.T) {
			r := testRecord()
			r.SetFailure(kind)

			v := sessions.Project(r, time.Hour)
			require.False(t, v.Authenticated())
			require.Empty(t, v.User.Token)
			require.Empty(t, v.User.RefreshToken)
			require.NotNil(t, v.User.Roles)
			require.Empty(t, v.User.Roles)
			require.False(t, v.HasRole("educator"))
			require.Equal(t, kind, v.Error)

			require.Equal(t, "7", v.User.ID)
			require.Equal(t, "jdoe", v.User.Name)
			require.Equal(t, "jane@moto.test", v.User.Email)

			// the record itself keeps its tokens
			require.Equal(t, "a.b.c", r.Token)
			require.Equal(t, "r-1", r.RefreshToken)
		})
	}

	t.Run("empty token", func(t *testing.T) {
		r := testRecord()
		r.Token = ""
		v := sessions.Project(r, time.Hour)
		require.Empty(t, v.User.RefreshToken)
		require.Empty(t, v.User.Roles)
	})
}

func TestViewJSONShape(t *testing.T) {
	r := testRecord()
	r.Roles = nil
	b, err := json.Marshal(sessions.Project(r, time.Hour))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	user := m["user"].(map[string]any)
	require.Equal(t, []any{}, user["roles"])
	require.Equal(t, "Jane", user["firstName"])
	require.NotContains(t, m, "error")
	require.Contains(t, m, "expires")
}

func TestSetTokensClearsFailure(t *testing.T) {
	r := testRecord()
	r.SetFailure(sessions.ErrorRefreshTokenError)

	now := r.UpdatedAt.Add(20 * time.Minute)
	r.SetTokens("a2.b2.c2", "", now, 15*time.Minute, time.Hour)

	require.False(t, r.Failed())
	require.False(t, r.NeedsRefresh)
	require.Equal(t, "a2.b2.c2", r.Token)
	require.Equal(t, "r-1", r.RefreshToken)
	require.Equal(t, now.Add(15*time.Minute), r.TokenExpiry)
	require.Equal(t, now.Add(time.Hour), r.RefreshTokenExpiry)
}
