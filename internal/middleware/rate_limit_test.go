package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterEnforcesCap(t *testing.T) {
	l := newRateLimiter(3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, l.allow("alice", now))
	}
	require.False(t, l.allow("alice", now))

	// Other users are counted independently.
	require.True(t, l.allow("bob", now))
}

func TestRateLimiterWindowResets(t *testing.T) {
	l := newRateLimiter(1)
	now := time.Now()

	require.True(t, l.allow("alice", now))
	require.False(t, l.allow("alice", now.Add(30*time.Second)))
	require.True(t, l.allow("alice", now.Add(61*time.Second)))
}

func TestRateLimiterEvictsStaleWindows(t *testing.T) {
	l := newRateLimiter(5)
	now := time.Now()

	require.True(t, l.allow("alice", now))
	require.True(t, l.allow("bob", now))
	require.Len(t, l.windows, 2)

	// A request two minutes later sweeps out both stale windows and
	// leaves only the active user's fresh one.
	require.True(t, l.allow("carol", now.Add(2*time.Minute)))
	require.Len(t, l.windows, 1)
	_, ok := l.windows["carol"]
	require.True(t, ok)
}
