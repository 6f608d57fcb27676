package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mmdatafocus/books_quotation/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisDB(client)
	t.Cleanup(func() {
		config.SetRedisDB(nil)
		_ = client.Close()
	})
	return mr
}

func TestObtainLock_WithoutRedis(t *testing.T) {
	config.SetRedisDB(nil)

	release, err := ObtainLock(context.Background(), "lock:test", "utils", "TestObtainLock")
	require.NoError(t, err)
	require.NotNil(t, release)
	release()
}

func TestObtainLock_HeldElsewhere(t *testing.T) {
	mr := useTestRedis(t)
	ctx := context.Background()

	release, err := ObtainLock(ctx, "lock:test", "utils", "TestObtainLock")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:test"))
	assert.Positive(t, mr.TTL("lock:test"))

	_, err = ObtainLock(ctx, "lock:test", "utils", "TestObtainLock")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "lock:test is being processed")

	// other keys are independent
	other, err := ObtainLock(ctx, "lock:other", "utils", "TestObtainLock")
	require.NoError(t, err)
	other()

	release()
	assert.False(t, mr.Exists("lock:test"))

	again, err := ObtainLock(ctx, "lock:test", "utils", "TestObtainLock")
	require.NoError(t, err)
	again()
}
