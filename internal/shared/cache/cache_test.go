package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"errorlens-backend/internal/shared/cache"
)

func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rc, err := cache.NewRedisCache("redis://" + host + ":" + port.Port())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestAnalysisKey(t *testing.T) {
	assert.Equal(t, "errorlens:analysis:abc", cache.AnalysisKey("abc"))
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := cache.NewRedisCache("not-a-url")
	assert.Error(t, err)
}

func TestRedisCacheRoundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Ping(ctx))
	require.NoError(t, rc.Set(ctx, "k", []byte("v"), 10*time.Second))

	val, found, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, rc.Delete(ctx, "k"))
	val, found, err = rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
}
