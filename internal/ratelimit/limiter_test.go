package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) *Limiter {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test", max, window, zap.NewNop())
}

func TestCheckFailsOpenWithoutBackend(t *testing.T) {
	limiter := New(nil, "auth", 10, time.Minute, zap.NewNop())

	result := limiter.Check(context.Background(), "203.0.113.9")
	require.True(t, result.Success)
	require.Equal(t, "Rate limiting not configured", result.Error)
}

func TestCheckFailsOpenOnNilLimiter(t *testing.T) {
	var limiter *Limiter

	result := limiter.Check(context.Background(), "203.0.113.9")
	require.True(t, result.Success)
	require.Equal(t, "Rate limiting not configured", result.Error)
}

func TestCheckEnforcesLimit(t *testing.T) {
	limiter := newTestLimiter(t, 3, time.Minute)

	for want := int64(2); want >= 0; want-- {
		result := limiter.Check(context.Background(), "203.0.113.9")
		require.True(t, result.Success)
		require.Equal(t, want, result.Remaining)
	}

	for i := 0; i < 3; i++ {
		result := limiter.Check(context.Background(), "203.0.113.9")
		require.False(t, result.Success)
		require.Zero(t, result.Remaining)
	}
}

func TestCheckIsolatesIdentifiers(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)

	require.True(t, limiter.Check(context.Background(), "203.0.113.9").Success)
	require.False(t, limiter.Check(context.Background(), "203.0.113.9").Success)
	require.True(t, limiter.Check(context.Background(), "198.51.100.1").Success)
}

func TestCheckConcurrentRequestsDoNotOvershoot(t *testing.T) {
	const max = 5
	limiter := newTestLimiter(t, max, time.Minute)

	var wg sync.WaitGroup
	var admitted int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Check(context.Background(), "203.0.113.9").Success {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, max, admitted)
}

func TestCheckFailsOpenWhenBackendDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := New(client, "test", 3, time.Minute, zap.NewNop())
	srv.Close()

	result := limiter.Check(context.Background(), "203.0.113.9")
	require.True(t, result.Success)
	require.Equal(t, "rate limiter unavailable", result.Error)
}
