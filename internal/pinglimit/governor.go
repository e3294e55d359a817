// Package pinglimit governs how often the execution engine issues a
// "balance of self" ping against a given node account, independent of
// that logical request's own retry/backoff budget (SPEC_FULL.md §4.A).
//
// Without this, a burst of concurrent logical requests that all land on
// the same cold (not-recently-used) node would each issue their own ping
// before proceeding, since "recently used" is judged at candidate-pick
// time. Rate-limiting the ping itself (not the request) keeps this cheap
// without changing retry semantics: a rate-limited ping is simply skipped,
// and the candidate is dispatched to directly.
package pinglimit

import (
	"time"

	catrate "github.com/joeycumines/go-catrate"
)

// DefaultRate caps pinging a single node account to once per 10 seconds.
var DefaultRate = map[time.Duration]int{10 * time.Second: 1}

// Governor wraps a catrate.Limiter keyed by node account.
type Governor struct {
	limiter *catrate.Limiter
}

// New constructs a Governor using rates (DefaultRate if nil).
func New(rates map[time.Duration]int) *Governor {
	if rates == nil {
		rates = DefaultRate
	}
	return &Governor{limiter: catrate.NewLimiter(rates)}
}

// Allow reports whether a ping against category (typically a node account
// ID, passed as any comparable value) may proceed right now.
func (g *Governor) Allow(category any) bool {
	if g == nil || g.limiter == nil {
		return true
	}
	_, ok := g.limiter.Allow(category)
	return ok
}
