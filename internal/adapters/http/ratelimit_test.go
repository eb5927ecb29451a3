package http

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIPRateLimiterAllow(t *testing.T) {
	rl := NewIPRateLimiter(10)

	require.True(t, rl.Allow("1.2.3.4"), "first request should be allowed")
	require.True(t, rl.Allow("5.6.7.8"), "different IP should be allowed")
}

func TestIPRateLimiterBurst(t *testing.T) {
	rl := NewIPRateLimiter(5) // burst = 10

	allowed := 0
	for i := 0; i < 20; i++ {
		if rl.Allow("10.0.0.1") {
			allowed++
		}
	}

	require.GreaterOrEqual(t, allowed, 5, "burst should let initial requests through")
	require.Less(t, allowed, 20, "limiter should block the tail")
}
