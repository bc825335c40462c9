package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sbilibin2017/gw-blog/internal/models"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { redisC.Terminate(ctx) })

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestTokenCacheRepository(t *testing.T) {
	rdb := setupRedis(t)
	repo := NewTokenCacheRepository(rdb)
	ctx := context.Background()

	token := "cached-token"
	exp := time.Now().Add(2 * time.Second).UTC()
	user := &models.UserDB{
		ID:              1,
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "digest",
		Token:           &token,
		TokenExpiration: &exp,
	}

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, user))

		got, err := repo.Get(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, "alice", got.Username)
		assert.Empty(t, got.Password, "password digest must never be cached")
		assert.True(t, got.TokenValidUntil(time.Now()))
	})

	t.Run("miss returns nil", func(t *testing.T) {
		got, err := repo.Get(ctx, "unknown")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, token))
		got, err := repo.Get(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expires with the token", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, user))
		time.Sleep(3 * time.Second)

		got, err := repo.Get(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired token is not cached", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		stale := "stale-token"
		require.NoError(t, repo.Set(ctx, &models.UserDB{ID: 2, Token: &stale, TokenExpiration: &past}))

		got, err := repo.Get(ctx, stale)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}
