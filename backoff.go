package ledgersdk

import (
	"math/rand"
	"time"
)

// BackoffPolicy produces successive wait durations for the engine's
// retry loop (spec §4.C): exponential with jitter, bounded by a maximum
// elapsed time equal to the caller-supplied timeout (defaulting to
// DefaultRequestTimeout).
type BackoffPolicy struct {
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// DefaultBackoffPolicy matches the teacher ecosystem's typical
// retry-with-jitter defaults: start at 250ms, cap at 8s per wait.
var DefaultBackoffPolicy = BackoffPolicy{
	MinBackoff: 250 * time.Millisecond,
	MaxBackoff: 8 * time.Second,
}

// DefaultRequestTimeout is the process-level default retry budget
// (spec §4.C: "≈15 min").
const DefaultRequestTimeout = 15 * time.Minute

// NextWait returns the wait duration before retry attempt n (0-indexed),
// exponential in n with up to ±10% jitter around the base wait, whose
// base is capped at MaxBackoff.
func (p BackoffPolicy) NextWait(n int) time.Duration {
	base := p.MinBackoff
	for i := 0; i < n; i++ {
		base *= 2
		if base >= p.MaxBackoff {
			base = p.MaxBackoff
			break
		}
	}
	if base > p.MaxBackoff {
		base = p.MaxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(base)/5 + 1)) // up to 20%
	return base - jitter/2 + time.Duration(rand.Int63n(int64(jitter)+1))
}
