package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/moto-session/backend"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, backend.RouteLogin, r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] != "jane@moto.test" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "a.b.c", "refresh_token": "r-1"})
	}))
	defer srv.Close()

	c := backend.New(srv.URL + "/")

	tokens, err := c.Login(context.Background(), "jane@moto.test", "secret")
	require.NoError(t, err)
	require.Equal(t, "a.b.c", tokens.AccessToken)
	require.Equal(t, "r-1", tokens.RefreshToken)

	_, err = c.Login(context.Background(), "jane@moto.test", "wrong")
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, backend.StatusCode(err))
	require.True(t, backend.IsRejected(err))
}

func TestRefresh(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, backend.RouteRefresh, r.URL.Path)
		require.Equal(t, "Bearer r-1", r.Header.Get("Authorization"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"a2.b2.c2","refresh_token":"r-2"}`))
	}))
	defer srv.Close()

	c := backend.New(srv.URL)

	tokens, err := c.Refresh(context.Background(), "r-1")
	require.NoError(t, err)
	require.Equal(t, "a2.b2.c2", tokens.AccessToken)
	require.Equal(t, "r-2", tokens.RefreshToken)

	status = http.StatusForbidden
	_, err = c.Refresh(context.Background(), "r-1")
	require.True(t, backend.IsRejected(err))

	status = http.StatusBadGateway
	_, err = c.Refresh(context.Background(), "r-1")
	require.Equal(t, http.StatusBadGateway, backend.StatusCode(err))
	require.False(t, backend.IsRejected(err))
}

func TestRefreshMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"refresh_token":"r-2"}`))
	}))
	defer srv.Close()

	_, err := backend.New(srv.URL).Refresh(context.Background(), "r-1")
	require.Error(t, err)
	require.Equal(t, 0, backend.StatusCode(err))
}

func TestNetworkFailureHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := backend.New(url).Refresh(context.Background(), "r-1")
	require.Error(t, err)
	require.Equal(t, 0, backend.StatusCode(err))
}
