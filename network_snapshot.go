package ledgersdk

import (
	"math/rand"
	"time"
)

// NetworkSnapshot is an immutable view of the node directory (spec §3):
// a map from account ID to index, the ordered node entries, and (shared
// by pointer with any snapshot that predates it, for unchanged nodes) the
// per-node health and channel state. Snapshots are replaced atomically via
// copy-on-write by the Managed Network Supervisor; old snapshots remain
// valid for in-flight requests.
type NetworkSnapshot struct {
	byAccountID map[AccountID]int
	nodes       []*NodeEntry
}

// NewNetworkSnapshot builds a snapshot directly from a set of node
// entries, assigning fresh health and channel cells to each. Used by
// client constructors (from_addresses, named networks) to build the
// initial snapshot before any mirror refresh has occurred.
func NewNetworkSnapshot(entries map[AccountID][]Endpoint) *NetworkSnapshot {
	s := &NetworkSnapshot{byAccountID: make(map[AccountID]int, len(entries))}
	for id, endpoints := range entries {
		s.byAccountID[id] = len(s.nodes)
		s.nodes = append(s.nodes, newNodeEntry(id, endpoints, nil, nil))
	}
	return s
}

// Len returns the number of nodes in the snapshot.
func (s *NetworkSnapshot) Len() int { return len(s.nodes) }

// Node returns the node entry at index i.
func (s *NetworkSnapshot) Node(i int) *NodeEntry { return s.nodes[i] }

// NodeIndexesFor resolves an explicit node ID list to snapshot indices,
// failing with ErrNodeAccountUnknown if any ID is absent (spec §4.A).
func (s *NetworkSnapshot) NodeIndexesFor(ids []AccountID) ([]int, error) {
	out := make([]int, len(ids))
	for i, id := range ids {
		idx, ok := s.byAccountID[id]
		if !ok {
			return nil, NewNodeAccountUnknownError(id)
		}
		out[i] = idx
	}
	return out, nil
}

// IsHealthy reports whether node i was healthy at time now.
func (s *NetworkSnapshot) IsHealthy(i int, now time.Time) bool {
	return s.nodes[i].Health.IsHealthy(now)
}

// RecentlyUsed reports whether node i was used within the last 15 minutes.
func (s *NetworkSnapshot) RecentlyUsed(i int, now time.Time) bool {
	return s.nodes[i].Health.RecentlyUsed(now)
}

// MarkUsed records node i as used at time now.
func (s *NetworkSnapshot) MarkUsed(i int, now time.Time) {
	s.nodes[i].Health.MarkUsed(now)
}

// MarkUnhealthy quarantines node i for 30 minutes from now.
func (s *NetworkSnapshot) MarkUnhealthy(i int, now time.Time) {
	s.nodes[i].Health.MarkUnhealthy(now)
}

// HealthyIndexes returns every currently-healthy node index, in snapshot
// order.
func (s *NetworkSnapshot) HealthyIndexes(now time.Time) []int {
	out := make([]int, 0, len(s.nodes))
	for i := range s.nodes {
		if s.IsHealthy(i, now) {
			out = append(out, i)
		}
	}
	return out
}

// RandomHealthySubset returns ceil((n+2)/3) currently-healthy node
// indexes, shuffled, per spec §4.A. This is the default per-attempt
// candidate list when the caller has not pinned an explicit node list.
func (s *NetworkSnapshot) RandomHealthySubset(now time.Time) []int {
	healthy := s.HealthyIndexes(now)
	want := (len(healthy) + 4) / 3 // ceil((n+2)/3)
	if want < 1 {
		want = 1
	}
	rand.Shuffle(len(healthy), func(i, j int) { healthy[i], healthy[j] = healthy[j], healthy[i] })
	if want < len(healthy) {
		healthy = healthy[:want]
	}
	return healthy
}

// Channel returns (AccountID, *NodeEntry) for node i, dialing its channel
// on first use.
func (s *NetworkSnapshot) Channel(i int) (AccountID, *NodeEntry, error) {
	n := s.nodes[i]
	if _, err := n.Channel(); err != nil {
		return n.AccountID, n, err
	}
	return n.AccountID, n, nil
}

// MergeAddressBook applies a freshly fetched address book on top of the
// receiver, producing a new snapshot per the four address-book merge
// rules of spec §4.A:
//
//  1. Same account, identical endpoints: reuse channel and health.
//  2. Same account, different endpoints: reuse health, discard channel.
//  3. New account: fresh health, unpopulated channel.
//  4. Old entries absent from the new book are dropped.
func (s *NetworkSnapshot) MergeAddressBook(book map[AccountID][]Endpoint) *NetworkSnapshot {
	next := &NetworkSnapshot{byAccountID: make(map[AccountID]int, len(book))}
	for id, endpoints := range book {
		var entry *NodeEntry
		if oldIdx, ok := s.byAccountID[id]; ok {
			old := s.nodes[oldIdx]
			if EndpointsEqual(old.Endpoints, endpoints) {
				// rule 1: reuse channel and health verbatim.
				entry = old
			} else {
				// rule 2: reuse health, discard channel (new endpoints).
				entry = newNodeEntry(id, endpoints, old.Health, nil)
			}
		} else {
			// rule 3: brand new node.
			entry = newNodeEntry(id, endpoints, nil, nil)
		}
		next.byAccountID[id] = len(next.nodes)
		next.nodes = append(next.nodes, entry)
	}
	// rule 4: entries absent from book are simply not copied over.
	return next
}

// CloseChannels closes every already-dialed channel in the snapshot,
// returning the first error encountered (closing continues regardless).
// Used by Client.Close to release gRPC resources on shutdown.
func (s *NetworkSnapshot) CloseChannels() error {
	var first error
	for _, n := range s.nodes {
		if err := n.CloseChannel(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
