package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsBurst(t *testing.T) {
	req := require.New(t)
	limiter := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		req.True(limiter.allow(), "token %d should be available", i)
	}
	req.False(limiter.allow(), "burst exhausted")
}

func TestRateLimiter_Refills(t *testing.T) {
	req := require.New(t)
	limiter := newRateLimiter(100, 10*time.Millisecond)

	for i := 0; i < 100; i++ {
		limiter.allow()
	}
	req.False(limiter.allow())

	time.Sleep(15 * time.Millisecond)
	req.True(limiter.allow(), "tokens should refill after the interval")
}

func TestRateLimiter_ZeroConfigStillAllows(t *testing.T) {
	req := require.New(t)

	limiter := newRateLimiter(0, 0)
	req.True(limiter.allow())
}
