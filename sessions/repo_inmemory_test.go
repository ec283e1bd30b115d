package sessions_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/jrsteele09/moto-session/sessions"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo(time.Hour)

	_, err := repo.Get(ctx, "sid-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	r := testRecord()
	require.NoError(t, repo.Upsert(ctx, r))

	got, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, r, got)

	// stored copies are isolated from callers
	got.Roles[0] = "admin"
	again, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, []string{"educator"}, again.Roles)

	require.NoError(t, repo.Delete(ctx, "sid-1"))
	require.NoError(t, repo.Delete(ctx, "sid-1"))
	_, err = repo.Get(ctx, "sid-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.Error(t, repo.Upsert(ctx, &sessions.TokenRecord{}))
	_, err = repo.Get(ctx, "")
	require.Error(t, err)
}

func TestInMemoryRepoIdleExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo(time.Hour, sessions.WithRepoNowTime(func() time.Time { return now }))
	require.NoError(t, repo.Upsert(ctx, testRecord()))

	now = now.Add(time.Hour)
	_, err := repo.Get(ctx, "sid-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	require.Equal(t, 0, repo.Len())
}

func TestInMemoryRepoReadsSlideIdleTimer(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo(time.Hour, sessions.WithRepoNowTime(func() time.Time { return now }))
	require.NoError(t, repo.Upsert(ctx, testRecord()))

	// reads alone keep an active session alive past the first hour
	for range 3 {
		now = now.Add(50 * time.Minute)
		_, err := repo.Get(ctx, "sid-1")
		require.NoError(t, err)
	}

	now = now.Add(time.Hour)
	_, err := repo.Get(ctx, "sid-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestInMemoryRepoZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo(0, sessions.WithRepoNowTime(func() time.Time { return now }))
	require.NoError(t, repo.Upsert(ctx, testRecord()))

	now = now.Add(24 * time.Hour)
	_, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
}
