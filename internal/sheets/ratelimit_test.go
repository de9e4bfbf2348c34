package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := newRateLimiter(3)
	now := time.Now()
	rl.lastRefill = now
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.Zero(t, rl.reserve(), "token %d should be free", i)
	}
	assert.Equal(t, 20*time.Second, rl.reserve())
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := newRateLimiter(60)
	start := time.Now()
	now := start
	rl.lastRefill = start
	rl.now = func() time.Time { return now }

	for i := 0; i < 60; i++ {
		require.Zero(t, rl.reserve())
	}
	assert.Equal(t, time.Second, rl.reserve())

	now = start.Add(2500 * time.Millisecond)
	assert.Zero(t, rl.reserve())
	assert.Zero(t, rl.reserve())
	assert.Equal(t, 500*time.Millisecond, rl.reserve())

	// Refill never exceeds capacity.
	now = start.Add(time.Hour)
	for i := 0; i < 60; i++ {
		require.Zero(t, rl.reserve())
	}
	assert.Positive(t, rl.reserve())
}

func TestRateLimiter_DefaultRate(t *testing.T) {
	rl := newRateLimiter(0)
	assert.Equal(t, DefaultRequestsPerMinute, rl.capacity)
}

func TestRateLimiter_WaitCanceled(t *testing.T) {
	rl := newRateLimiter(1)
	require.NoError(t, rl.wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
