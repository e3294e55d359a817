package ledgersdk

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ledgerkit/ledger-sdk-go/internal/pinglimit"
)

// Engine drives one logical request at a time to completion (spec §4.C):
// it selects candidate nodes from a NetworkSnapshot, builds and dispatches
// an attempt per candidate, classifies the reply, and retries with
// exponential backoff until a terminal result, a permanent error, or
// deadline expiry.
//
// An Engine is safe for concurrent use by multiple goroutines, each
// driving its own independent request (spec §5: "Multiple requests run
// concurrently without interference"); a single request's own attempts
// are always sequential (single-flight).
type Engine struct {
	network         *ManagedNetwork
	operator        *operatorCell
	ledgerID        func() LedgerID
	autoChecksums   func() bool
	defaultTimeout  func() time.Duration
	regenerateTxID  func() bool
	backoff         BackoffPolicy
	pingGov         *pinglimit.Governor
	logger          *logger
}

// NewEngine constructs an Engine bound to network and operator. The
// accessor functions let the engine observe the Client Facade's
// atomically-swappable defaults without taking a dependency on *Client
// itself (so Engine can be unit tested standalone). regenerateTxID may be
// nil, in which case regeneration defaults to enabled (matching
// Client.SetDefaultRegenerateTransactionID's own default).
func NewEngine(network *ManagedNetwork, operator *operatorCell, ledgerID func() LedgerID, autoChecksums func() bool, defaultTimeout func() time.Duration, regenerateTxID func() bool, log *logger) *Engine {
	return &Engine{
		network:        network,
		operator:       operator,
		ledgerID:       ledgerID,
		autoChecksums:  autoChecksums,
		defaultTimeout: defaultTimeout,
		regenerateTxID: regenerateTxID,
		backoff:        DefaultBackoffPolicy,
		pingGov:        pinglimit.New(nil),
		logger:         log,
	}
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeNextCandidateUnhealthy
	outcomeNextCandidateNoBackoff
	outcomeRegenerateTxID
	outcomeTransientBackoff
	outcomePermanent
)

type attemptOutcome struct {
	kind outcomeKind
	err  error
}

// Execute drives req to completion, per the state machine of spec §4.C.
func (e *Engine) Execute(ctx context.Context, req Request) (any, error) {
	timeout := e.defaultTimeout()
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()

	if e.autoChecksums != nil && e.autoChecksums() {
		if validator, ok := req.(ChecksumValidator); ok {
			if err := validator.ValidateChecksums(e.ledgerID()); err != nil {
				return nil, err
			}
		}
	}

	txID, hasTxID := req.ExplicitTransactionID()
	if !hasTxID && req.RequiresTransactionID() {
		payer, ok := e.operator.PayerAccountID()
		if !ok {
			return nil, NewNoPayerAccountOrTransactionIDError()
		}
		txID = GenerateTransactionID(payer)
		hasTxID = true
	}

	var lastErr error
	attempt := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, NewTimedOutError(time.Since(start).String(), lastErr)
		}

		snapshot := e.network.Load()
		candidates, explicit, err := e.pickCandidates(req, snapshot)
		if err != nil {
			return nil, err
		}

		if len(candidates) == 0 {
			// transient empty candidate set: wait and retry from the top.
			lastErr = nil
			if !e.sleepBackoff(ctx, &attempt, lastErr) {
				return nil, NewTimedOutError(time.Since(start).String(), lastErr)
			}
			continue
		}

		var transientThisRound bool

		for _, idx := range candidates {
			if ctx.Err() != nil {
				return nil, NewTimedOutError(time.Since(start).String(), lastErr)
			}

			now := time.Now()
			if !explicit && !snapshot.RecentlyUsed(idx, now) {
				node := snapshot.Node(idx)
				if e.pingGov.Allow(node.AccountID) {
					pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
					_, pingErr := e.Execute(pingCtx, &pingQuery{nodeID: node.AccountID})
					pingCancel()
					if pingErr != nil {
						snapshot.MarkUnhealthy(idx, now)
						e.logf("ping failed, skipping node", node.AccountID, pingErr)
						continue
					}
				}
			}

			nodeID, entry, chErr := snapshot.Channel(idx)
			if chErr != nil {
				snapshot.MarkUnhealthy(idx, now)
				lastErr = NewTransportError(chErr)
				e.logf("channel construction failed, marking node unhealthy", nodeID, lastErr)
				continue
			}

			build, err := req.BuildRequest(txID, hasTxID, nodeID)
			if err != nil {
				return nil, err
			}

			channel, _ := entry.Channel()
			snapshot.MarkUsed(idx, time.Now())
			reply, callErr := req.Execute(ctx, channel, build.Wire)
			out := e.classify(req, reply, callErr, txID, hasTxID)

			switch out.kind {
			case outcomeSuccess:
				return req.ParseResponse(reply, build.Ctx, nodeID, txID, hasTxID)

			case outcomeNextCandidateUnhealthy:
				snapshot.MarkUnhealthy(idx, time.Now())
				lastErr = out.err
				e.logf("transport unavailable, marking node unhealthy", nodeID, out.err)
				continue

			case outcomeNextCandidateNoBackoff:
				lastErr = out.err
				continue

			case outcomeRegenerateTxID:
				if hasTxID {
					// only the engine-minted identifier may be regenerated;
					// a caller-pinned identifier that expired is a
					// permanent failure, since silently replacing it would
					// violate the caller's explicit pin.
					if _, pinned := req.ExplicitTransactionID(); pinned {
						return nil, out.err
					}
					if e.regenerateTxID == nil || e.regenerateTxID() {
						txID = GenerateTransactionID(txID.AccountID)
					} else {
						return nil, out.err
					}
				}
				lastErr = out.err
				continue

			case outcomeTransientBackoff:
				lastErr = out.err
				transientThisRound = true

			case outcomePermanent:
				return nil, out.err
			}

			if transientThisRound {
				break
			}
		}

		attempt++
		if !e.sleepBackoff(ctx, &attempt, lastErr) {
			return nil, NewTimedOutError(time.Since(start).String(), lastErr)
		}
	}
}

// pickCandidates resolves the per-attempt candidate node indexes, per
// spec §4.C "Candidate selection":
//
//   - An explicit node list is filtered to healthy nodes; if none of the
//     explicit nodes are healthy, the full (unfiltered) explicit list is
//     used as a last resort, rather than failing outright.
//   - Otherwise, RandomHealthySubset is used.
func (e *Engine) pickCandidates(req Request, snapshot *NetworkSnapshot) (candidates []int, explicit bool, err error) {
	explicitIDs := req.ExplicitNodeIDs()
	if len(explicitIDs) == 0 {
		now := time.Now()
		return snapshot.RandomHealthySubset(now), false, nil
	}

	idxs, err := snapshot.NodeIndexesFor(explicitIDs)
	if err != nil {
		return nil, true, err
	}

	now := time.Now()
	var healthy []int
	for _, idx := range idxs {
		if snapshot.IsHealthy(idx, now) {
			healthy = append(healthy, idx)
		}
	}
	if len(healthy) > 0 {
		return healthy, true, nil
	}
	// last-resort fallback: use the explicit list unfiltered.
	return idxs, true, nil
}

// classify implements the reply-classification table of spec §4.C.
func (e *Engine) classify(req Request, reply Reply, callErr error, txID TransactionID, hasTxID bool) attemptOutcome {
	if callErr != nil {
		st, ok := status.FromError(callErr)
		if !ok {
			return attemptOutcome{outcomePermanent, NewTransportError(callErr)}
		}
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted:
			return attemptOutcome{outcomeNextCandidateUnhealthy, NewTransportError(callErr)}
		case codes.Internal:
			if isHTMLLoadBalancerError(st.Message()) {
				// Open question (§9): an HTML reply from a load balancer in
				// front of the node means the request's effect on the
				// ledger is unknown. This module preserves the
				// conservative upstream semantics of treating that as a
				// PERMANENT failure, even though the request may have been
				// idempotent (e.g. a read query) and arguably safe to
				// retry. Documented, not revisited.
				return attemptOutcome{outcomePermanent, NewTransportError(callErr)}
			}
			return attemptOutcome{outcomePermanent, NewTransportError(callErr)}
		default:
			return attemptOutcome{outcomePermanent, NewTransportError(callErr)}
		}
	}

	s := req.PrecheckStatusOf(reply)
	if !IsKnown(s) {
		return attemptOutcome{outcomePermanent, NewResponseStatusUnrecognizedError(int32(s))}
	}

	if s == StatusOk {
		if req.ShouldRetry(reply) {
			return attemptOutcome{outcomeTransientBackoff, nil}
		}
		return attemptOutcome{outcomeSuccess, nil}
	}

	switch s {
	case StatusBusy, StatusPlatformNotActive:
		return attemptOutcome{outcomeNextCandidateNoBackoff, nil}
	case StatusTransactionExpired:
		return attemptOutcome{outcomeRegenerateTxID, req.MapPrecheckError(s, txID, hasTxID)}
	}

	if req.ShouldRetryPrecheck(s) {
		return attemptOutcome{outcomeTransientBackoff, nil}
	}

	return attemptOutcome{outcomePermanent, req.MapPrecheckError(s, txID, hasTxID)}
}

// sleepBackoff logs the retry (attempt number, wait duration, and cause)
// and waits the next backoff interval (advancing attempt), returning
// false if ctx expires first.
func (e *Engine) sleepBackoff(ctx context.Context, attempt *int, cause error) bool {
	wait := e.backoff.NextWait(*attempt)
	if e.logger != nil {
		e.logger.warn("retrying after backoff", "attempt", *attempt, "wait", wait.String(), "error", cause)
	}
	*attempt++
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) logf(msg string, nodeID AccountID, err error) {
	if e.logger == nil {
		return
	}
	e.logger.warn(msg, "node", nodeID.String(), "error", err)
}

// isHTMLLoadBalancerError reports whether an Internal-coded gRPC error's
// message looks like an HTML error page from a fronting load balancer,
// rather than a genuine application error from the node itself.
func isHTMLLoadBalancerError(msg string) bool {
	return len(msg) > 0 && (contains(msg, "<html") || contains(msg, "<!DOCTYPE") || contains(msg, "text/html"))
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
