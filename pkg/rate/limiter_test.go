package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNoLimiter(t *testing.T) {
	var l Limiter = NoLimiter{}
	for i := 0; i < 1000; i++ {
		allowed, err := l.Allow("rpc")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, l.Wait(ctx, "rpc"))
}

func TestLocalRateLimiter_Allow(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(2))

	// Keys are limited independently
	for _, key := range []string{"a", "b"} {
		for i := 0; i < 2; i++ {
			allowed, err := l.Allow(key)
			require.NoError(t, err)
			assert.True(t, allowed, key)
		}

		allowed, err := l.Allow(key)
		require.NoError(t, err)
		assert.False(t, allowed, key)
	}
}

func TestLocalRateLimiter_Wait(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(1))

	assert.NoError(t, l.Wait(context.Background(), "a"))

	// The single token is spent, so the next wait can't be satisfied in time
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "a"))

	assert.NoError(t, l.Wait(context.Background(), "b"))
}

func TestLocalRateLimiter_FractionalLimit(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(0.5))

	allowed, err := l.Allow("a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow("a")
	require.NoError(t, err)
	assert.False(t, allowed)
}
