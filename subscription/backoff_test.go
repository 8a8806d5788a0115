package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func delays(r *retrier, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = r.next()
	}

	return out
}

func TestRetrier_Bounds(t *testing.T) {
	base := 20 * time.Millisecond
	limit := 300 * time.Millisecond

	r := newRetrier(base, limit, retryMultiplier, 42)
	got := delays(r, 20)

	require.Equal(t, base, got[0], "first delay is the base")
	for _, d := range got {
		require.GreaterOrEqual(t, d, base)
		require.LessOrEqual(t, d, limit)
	}
}

func TestRetrier_LimitBelowBase(t *testing.T) {
	r := newRetrier(200*time.Millisecond, 100*time.Millisecond, retryMultiplier, 1)
	for _, d := range delays(r, 3) {
		require.Equal(t, 100*time.Millisecond, d)
	}
}

func TestRetrier_Defaults(t *testing.T) {
	r := newRetrier(0, 0, 0.5, 0)
	require.Equal(t, fallbackBackoff, r.base)
	require.InDelta(t, 1.0, r.mult, 0)
	require.Nil(t, r.rng)

	// Without growth every delay stays within [base, 2*base).
	for _, d := range delays(r, 10) {
		require.GreaterOrEqual(t, d, fallbackBackoff)
		require.Less(t, d, 2*fallbackBackoff)
	}
}

func TestRetrier_SeedIsReproducible(t *testing.T) {
	a := delays(newRetrier(10*time.Millisecond, time.Second, retryMultiplier, 7), 12)
	b := delays(newRetrier(10*time.Millisecond, time.Second, retryMultiplier, 7), 12)
	require.Equal(t, a, b)

	c := delays(newRetrier(10*time.Millisecond, time.Second, retryMultiplier, 8), 12)
	require.NotEqual(t, a, c)
}
