package ledgersdk

import (
	"sync/atomic"
	"time"
)

// unhealthyDuration is how long a node is quarantined after being marked
// unhealthy (§3): healthiness returns only by the passage of time.
const unhealthyDuration = 30 * time.Minute

// recentlyUsedWindow bounds how long "recently used" (§4.A) looks back,
// for deciding whether a ping is needed before dispatching to a candidate.
const recentlyUsedWindow = 15 * time.Minute

// NodeHealth is two atomic unix-second counters shared, by pointer, across
// every NetworkSnapshot that a node account persists through (§9): reusing
// the same *NodeHealth across an address-book refresh is what makes the
// circuit breaker actually break, instead of resetting on every refresh.
//
// Readers use relaxed/advisory semantics: races between IsHealthy and
// MarkUnhealthy are harmless, at worst causing a redundant ping or a
// momentarily-missed unhealthiness (§5).
type NodeHealth struct {
	healthyUntil atomic.Int64 // unix seconds; healthy iff now >= healthyUntil
	lastUsed     atomic.Int64 // unix seconds of the most recent attempt
}

// NewNodeHealth returns a NodeHealth that is immediately healthy and has
// never been used.
func NewNodeHealth() *NodeHealth {
	return &NodeHealth{}
}

// IsHealthy reports whether the node was healthy at time now.
func (h *NodeHealth) IsHealthy(now time.Time) bool {
	return now.Unix() >= h.healthyUntil.Load()
}

// RecentlyUsed reports whether the node was used within the last 15
// minutes, as of now.
func (h *NodeHealth) RecentlyUsed(now time.Time) bool {
	last := h.lastUsed.Load()
	return last != 0 && now.Unix()-last < int64(recentlyUsedWindow/time.Second)
}

// MarkUsed records now as the most recent attempt time.
func (h *NodeHealth) MarkUsed(now time.Time) {
	h.lastUsed.Store(now.Unix())
}

// MarkUnhealthy quarantines the node for unhealthyDuration from now. It
// never decreases healthyUntil — a node already quarantined further into
// the future stays quarantined for the longer of the two windows, matching
// §3's "never decreased by a subsequent mark healthy" invariant (marking
// unhealthy again is not a decrease, but repeated marks should not thrash
// the window backwards either).
func (h *NodeHealth) MarkUnhealthy(now time.Time) {
	until := now.Add(unhealthyDuration).Unix()
	for {
		cur := h.healthyUntil.Load()
		if until <= cur {
			return
		}
		if h.healthyUntil.CompareAndSwap(cur, until) {
			return
		}
	}
}
