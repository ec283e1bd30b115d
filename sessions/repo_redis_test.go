package sessions_test

import (
	"context"
	"os"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/sessions"
	"github.com/stretchr/testify/require"
)

// Runs against a real redis when REDIS_TEST_ADDR is set.
func TestRedisRepo(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client, err := sessions.OpenRedis(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sealer, err := sessions.NewSealer("a-long-enough-secret")
	require.NoError(t, err)
	repo := sessions.NewRedisRepo(client, sealer, time.Minute)

	r := testRecord()
	r.ID = "redis-test-" + time.Now().Format("150405.000000")
	require.NoError(t, repo.Upsert(ctx, r))
	t.Cleanup(func() { _ = repo.Delete(ctx, r.ID) })

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, r.Token, got.Token)
	require.Equal(t, r.Roles, got.Roles)
	require.True(t, r.TokenExpiry.Equal(got.TokenExpiry))

	ttl, err := client.TTL(ctx, "moto:session:"+r.ID).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	// a read resets the TTL
	require.NoError(t, client.Expire(ctx, "moto:session:"+r.ID, 10*time.Second).Err())
	_, err = repo.Get(ctx, r.ID)
	require.NoError(t, err)
	ttl, err = client.TTL(ctx, "moto:session:"+r.ID).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, 30*time.Second)

	require.NoError(t, repo.Delete(ctx, r.ID))
	_, err = repo.Get(ctx, r.ID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
