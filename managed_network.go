package ledgersdk

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// AddressBookFetcher retrieves the current node directory, typically via
// a mirror-node file-content query. Returning an error leaves the prior
// snapshot in place; the refresh loop simply retries on its next period.
type AddressBookFetcher func(ctx context.Context) (map[AccountID][]Endpoint, error)

// ManagedNetwork owns the live *NetworkSnapshot (component A/E, spec
// §4.E): an RCU pointer swapped by a background refresh loop, with no
// locks on the request-serving hot path (Load is a single atomic read).
//
// The shutdown sequencing (a stop signal that both halts new refresh
// cycles and lets any in-flight one finish before returning) follows the
// stop-channel/done-channel idiom of microbatch.Batcher.Shutdown, adapted
// here from batch draining to periodic refresh draining.
type ManagedNetwork struct {
	snapshot atomic.Pointer[NetworkSnapshot]

	fetch  AddressBookFetcher
	logger *logger

	periodCh chan time.Duration // send to change the refresh period; close to shut down
	done     chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
}

// defaultRefreshPeriod matches the upstream SDKs' mirror address-book
// refresh cadence.
const defaultRefreshPeriod = 24 * time.Hour

// bootstrapDelay defers the first refresh so a freshly constructed
// client can serve requests against its seed snapshot immediately,
// rather than blocking construction on a mirror round trip.
const bootstrapDelay = 10 * time.Second

// NewManagedNetwork starts the background refresh loop over an initial
// snapshot. A nil fetch disables refreshing entirely (useful for tests
// and for clients constructed from a fixed address list with no mirror
// network configured).
func NewManagedNetwork(initial *NetworkSnapshot, fetch AddressBookFetcher, log *logger) *ManagedNetwork {
	ctx, cancel := context.WithCancel(context.Background())
	n := &ManagedNetwork{
		fetch:    fetch,
		logger:   log,
		periodCh: make(chan time.Duration),
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	n.snapshot.Store(initial)
	if fetch != nil {
		go n.run(ctx)
	} else {
		close(n.done)
	}
	return n
}

// Load returns the current snapshot. Safe for concurrent use; never
// blocks.
func (n *ManagedNetwork) Load() *NetworkSnapshot {
	return n.snapshot.Load()
}

// SetRefreshPeriod changes the interval between address-book refreshes.
// A non-positive duration pauses periodic refreshing until a positive
// period is set again.
func (n *ManagedNetwork) SetRefreshPeriod(d time.Duration) {
	select {
	case n.periodCh <- d:
	case <-n.done:
	}
}

// Close stops the refresh loop and waits for any in-flight fetch to
// finish, per spec §4.F's Client.Close contract. ctx bounds how long to
// wait for a graceful stop before returning its error; the loop itself is
// always told to stop regardless.
func (n *ManagedNetwork) Close(ctx context.Context) error {
	n.stopOnce.Do(func() { close(n.periodCh) })
	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		n.cancel()
		<-n.done
		return ctx.Err()
	}
}

func (n *ManagedNetwork) run(ctx context.Context) {
	defer close(n.done)
	defer n.cancel()

	period := defaultRefreshPeriod
	timer := time.NewTimer(bootstrapDelay)
	defer timer.Stop()
	// timerC is nil (disabling the timer.C select case) whenever
	// refreshing is paused; a non-positive period means "pause
	// indefinitely, await change" (spec §4.E), not "refresh immediately
	// and forever".
	timerC := timer.C

	for {
		select {
		case <-ctx.Done():
			return

		case newPeriod, ok := <-n.periodCh:
			if !ok {
				return // period channel closed: shut down
			}
			switch {
			case newPeriod <= 0:
				if timerC != nil {
					if !timer.Stop() {
						<-timer.C
					}
					timerC = nil
				}
			case period <= 0:
				// resuming from a paused state: arm fresh.
				timer.Reset(jitter(newPeriod))
				timerC = timer.C
			case newPeriod < period:
				// Re-evaluate the timer immediately only when the period
				// shrinks; an increase takes effect on the next tick so
				// an already-scheduled refresh isn't pushed out
				// indefinitely.
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(jitter(newPeriod))
				timerC = timer.C
			}
			period = newPeriod

		case <-timerC:
			n.refreshOnce(ctx)
			timer.Reset(jitter(period))
			timerC = timer.C
		}
	}
}

func (n *ManagedNetwork) refreshOnce(ctx context.Context) {
	book, err := n.fetch(ctx)
	if err != nil {
		if n.logger != nil {
			n.logger.warn("address book refresh failed", "error", err)
		}
		return
	}
	current := n.snapshot.Load()
	next := current.MergeAddressBook(book)
	n.snapshot.Store(next)
	if n.logger != nil {
		n.logger.info("address book refreshed", "nodeCount", next.Len())
	}
}

// jitter adds 0..100ms to d, per spec §4.E's wait-loop jitter rule,
// avoiding synchronized refresh stampedes across many clients started at
// the same time.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(100*time.Millisecond)))
}
