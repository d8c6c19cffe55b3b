package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteries-backend/internal/config"
	"mysteries-backend/internal/services"
)

func setupTestRedis(t *testing.T) *services.RedisStore {
	t.Helper()
	cfg := &config.Config{
		RedisURL:  "localhost:6379",
		RedisPass: "",
		RedisDB:   0,
		KeyPrefix: "test:" + uuid.NewString() + ":",
	}

	store, err := services.NewRedisStore(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() {
		store.Reset(context.Background())
		store.Close()
	})
	return store
}

func TestRedisStoreTransitions(t *testing.T) {
	store := setupTestRedis(t)
	g := services.NewGameState(store, authority, nil)
	ctx := context.Background()

	require.NoError(t, g.SetMaxLineCapacity(ctx, admin, 5))
	require.NoError(t, g.SetPriceToUnlockUser(ctx, admin, uint256.NewInt(3)))

	userID, err := g.AllocateUser(ctx, admin, "s1")
	require.NoError(t, err)

	_, err = g.ClaimUser(ctx, paying("alice.near", 2), userID, "s1")
	assert.ErrorIs(t, err, services.ErrWrongDeposit)

	_, err = g.ClaimUser(ctx, paying("alice.near", 3), userID, "s1")
	require.NoError(t, err)

	_, err = g.Enqueue(ctx, admin, userID)
	require.NoError(t, err)

	line, err := g.SnapshotLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{userID}, line)

	user, err := g.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", user.Account)
	require.NotNil(t, user.Turn)
}

func TestRedisStoreConcurrentUpdates(t *testing.T) {
	store := setupTestRedis(t)
	g := services.NewGameState(store, authority, nil)
	ctx := context.Background()

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := g.AllocateUser(ctx, admin, "s")
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-errs)
	}

	_, err := g.GetUser(ctx, n)
	assert.NoError(t, err)
	_, err = g.GetUser(ctx, n+1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRedisRateLimit(t *testing.T) {
	store := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := store.CheckRateLimit(ctx, "alice.near", "claim", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := store.CheckRateLimit(ctx, "alice.near", "claim", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
