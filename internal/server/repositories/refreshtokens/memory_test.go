package refreshtokens

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateFindActive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	rt, err := repo.Create(ctx, "u1", "h1", now.Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, rt.ID)

	got, err := repo.FindActive(ctx, "h1", now)
	require.NoError(t, err)
	assert.Equal(t, rt.ID, got.ID)

	_, err = repo.Create(ctx, "u2", "h1", now.Add(time.Hour))
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = repo.FindActive(ctx, "nope", now)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	exp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, "u1", "h1", exp)
	require.NoError(t, err)

	_, err = repo.FindActive(ctx, "h1", exp.Add(-time.Nanosecond))
	require.NoError(t, err)

	_, err = repo.FindActive(ctx, "h1", exp)
	require.ErrorIs(t, err, common.ErrorNotFound, "expires_at == now is expired")

	rt, err := repo.Find(ctx, "h1")
	require.NoError(t, err, "reads never delete")
	assert.Nil(t, rt.RevokedAt)
}

func TestMemory_RevokeIsIdempotentAndFinal(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	rt, err := repo.Create(ctx, "u1", "h1", now.Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, repo.Revoke(ctx, rt.ID, now))
	require.NoError(t, repo.Revoke(ctx, rt.ID, now.Add(time.Minute)))
	require.NoError(t, repo.Revoke(ctx, "unknown", now))

	_, err = repo.FindActive(ctx, "h1", now)
	require.ErrorIs(t, err, common.ErrorNotFound)

	got, err := repo.Find(ctx, "h1")
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	assert.True(t, got.RevokedAt.Equal(now), "second revoke keeps the first timestamp")
}

func TestMemory_ReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	rt, err := repo.Create(ctx, "u1", "h1", now.Add(time.Hour))
	require.NoError(t, err)
	rt.UserID = "mallory"
	rt.RevokedAt = &now

	got, err := repo.FindActive(ctx, "h1", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestMemory_RevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, "u1", fmt.Sprintf("a%d", i), now.Add(time.Hour))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, "u2", "b0", now.Add(time.Hour))
	require.NoError(t, err)

	n, err := repo.RevokeAllForUser(ctx, "u1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = repo.RevokeAllForUser(ctx, "u1", now)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindActive(ctx, "b0", now)
	require.NoError(t, err, "other users are untouched")
}

func TestMemory_SweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	cutoff := time.Now()

	_, err := repo.Create(ctx, "u1", "old", cutoff.Add(-time.Hour))
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u1", "edge", cutoff)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u1", "fresh", cutoff.Add(time.Hour))
	require.NoError(t, err)

	n, err := repo.SweepExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.Find(ctx, "old")
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.Find(ctx, "fresh")
	require.NoError(t, err)
}

func TestMemory_ConcurrentRevokeAndRead(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	rt, err := repo.Create(ctx, "u1", "h1", now.Add(time.Hour))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.Revoke(ctx, rt.ID, now)
		}()
		go func() {
			defer wg.Done()
			if got, err := repo.FindActive(ctx, "h1", now); err == nil {
				assert.Nil(t, got.RevokedAt, "an active read never sees a half-revoked record")
			}
		}()
	}
	wg.Wait()

	_, err = repo.FindActive(ctx, "h1", now)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
