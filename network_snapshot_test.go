package ledgersdk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshot(n int) (*NetworkSnapshot, []AccountID) {
	entries := make(map[AccountID][]Endpoint, n)
	ids := make([]AccountID, n)
	for i := 0; i < n; i++ {
		id := AccountID{Shard: 0, Realm: 0, Num: uint64(3 + i)}
		ids[i] = id
		entries[id] = []Endpoint{{IP: [4]byte{127, 0, 0, byte(i)}, Port: 50211}}
	}
	return NewNetworkSnapshot(entries), ids
}

func TestNetworkSnapshot_NodeIndexesFor_UnknownAccount(t *testing.T) {
	snap, _ := newTestSnapshot(2)
	_, err := snap.NodeIndexesFor([]AccountID{{Shard: 9, Realm: 9, Num: 9}})
	require.Error(t, err)
	var sdkErr *Error
	require.ErrorAs(t, err, &sdkErr)
	assert.Equal(t, ErrNodeAccountUnknown, sdkErr.Kind)
}

func TestNetworkSnapshot_HealthyIndexes_ExcludesQuarantined(t *testing.T) {
	snap, _ := newTestSnapshot(3)
	now := time.Now()
	snap.MarkUnhealthy(1, now)
	healthy := snap.HealthyIndexes(now)
	assert.ElementsMatch(t, []int{0, 2}, healthy)
}

func TestNetworkSnapshot_RandomHealthySubset_SizeRule(t *testing.T) {
	snap, _ := newTestSnapshot(7)
	now := time.Now()
	subset := snap.RandomHealthySubset(now)
	// ceil((7+2)/3) == 3
	assert.Len(t, subset, 3)
}

func TestNetworkSnapshot_MergeAddressBook_Rules(t *testing.T) {
	snap, ids := newTestSnapshot(3)
	old0 := snap.Node(0)
	old1 := snap.Node(1)

	newID := AccountID{Shard: 0, Realm: 0, Num: 999}
	book := map[AccountID][]Endpoint{
		ids[0]: old0.Endpoints,                            // rule 1: unchanged
		ids[1]: {{IP: [4]byte{10, 0, 0, 1}, Port: 50212}}, // rule 2: endpoints changed
		newID:  {{IP: [4]byte{10, 0, 0, 2}, Port: 50211}}, // rule 3: brand new
		// ids[2] dropped entirely: rule 4
	}

	merged := snap.MergeAddressBook(book)
	assert.Equal(t, 3, merged.Len())

	idxs, err := merged.NodeIndexesFor([]AccountID{ids[0]})
	require.NoError(t, err)
	assert.Same(t, old0, merged.Node(idxs[0]), "rule 1 must reuse the node entry verbatim")

	idxs, err = merged.NodeIndexesFor([]AccountID{ids[1]})
	require.NoError(t, err)
	reused1 := merged.Node(idxs[0])
	assert.NotSame(t, old1, reused1, "rule 2 must discard the old channel/entry")
	assert.Same(t, old1.Health, reused1.Health, "rule 2 must still reuse health")

	_, err = merged.NodeIndexesFor([]AccountID{ids[2]})
	assert.Error(t, err, "rule 4: dropped node must be absent")

	_, err = merged.NodeIndexesFor([]AccountID{newID})
	assert.NoError(t, err, "rule 3: new node must be present")
}
