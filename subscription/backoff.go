package subscription

import (
	rand "math/rand/v2"
	"time"
)

// fallbackBackoff is used when a retrier is built with a non-positive base.
const fallbackBackoff = 50 * time.Millisecond

// retrier produces subscribe retry delays with decorrelated jitter:
//
//	next = base + rand[0, prev*mult - base)
//
// clamped to limit. The first delay is base.
type retrier struct {
	base  time.Duration
	limit time.Duration
	mult  float64
	rng   *rand.Rand
	prev  time.Duration
}

// newRetrier creates a retrier. A non-zero seed makes the delays reproducible;
// seed 0 uses the global generator.
//
//nolint:gosec // retry jitter does not need a cryptographic source
func newRetrier(base, limit time.Duration, mult float64, seed int64) *retrier {
	if base <= 0 {
		base = fallbackBackoff
	}
	if mult < 1 {
		mult = 1
	}

	r := &retrier{base: base, limit: limit, mult: mult}
	if seed != 0 {
		s := uint64(seed)
		r.rng = rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
	}

	return r
}

// next returns the delay before the following attempt.
func (r *retrier) next() time.Duration {
	d := r.base
	if r.prev > 0 {
		span := time.Duration(float64(r.prev)*r.mult) - r.base
		if span <= 0 {
			span = r.base
		}
		d = r.base + time.Duration(r.int64n(int64(span)))
	}
	if r.limit > 0 && d > r.limit {
		d = r.limit
	}
	r.prev = d

	return d
}

func (r *retrier) int64n(n int64) int64 {
	if r.rng != nil {
		return r.rng.Int64N(n)
	}

	return rand.Int64N(n) //nolint:gosec // retry jitter
}
