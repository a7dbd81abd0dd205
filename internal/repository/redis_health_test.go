package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthMonitor_TracksConnectionLifecycle(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	monitor := NewRedisHealthMonitor(client, nil)
	assert.False(t, monitor.Live(), "not live before any connection")

	require.NoError(t, monitor.Ping(ctx))
	assert.True(t, monitor.Live())

	t.Run("server reply errors keep the flag", func(t *testing.T) {
		err := client.Do(ctx, "NOSUCHCOMMAND").Err()
		require.Error(t, err)
		assert.True(t, monitor.Live())

		_, err = client.Get(ctx, "missing").Result()
		assert.ErrorIs(t, err, redis.Nil)
		assert.True(t, monitor.Live())
	})

	t.Run("caller deadlines keep the flag", func(t *testing.T) {
		expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
		defer cancel()
		err := client.Get(expired, "hold:any").Err()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, monitor.Live())
	})

	mr.Close()
	assert.Error(t, monitor.Ping(ctx))
	assert.False(t, monitor.Live())

	require.NoError(t, mr.Restart())
	require.NoError(t, monitor.Ping(ctx))
	assert.True(t, monitor.Live())
}

func TestHealthMonitor_RunRecovers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	monitor := NewRedisHealthMonitor(client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Run(ctx, 10*time.Millisecond)

	assert.Eventually(t, monitor.Live, time.Second, 5*time.Millisecond)

	mr.Close()
	assert.Eventually(t, func() bool { return !monitor.Live() }, time.Second, 5*time.Millisecond)

	require.NoError(t, mr.Restart())
	assert.Eventually(t, monitor.Live, 2*time.Second, 5*time.Millisecond)
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.False(t, isConnectionError(redis.Nil))
	assert.False(t, isConnectionError(context.Canceled))
	assert.False(t, isConnectionError(context.DeadlineExceeded))
	assert.False(t, isConnectionError(fmt.Errorf("get hold: %w", context.DeadlineExceeded)))
	assert.True(t, isConnectionError(io.EOF))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
}
