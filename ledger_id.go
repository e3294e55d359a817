package ledgersdk

import "bytes"

// LedgerID identifies which ledger (network) an entity ID's checksum is
// bound to. The zero value is not a valid ledger ID.
type LedgerID struct {
	bytes []byte
}

var (
	// LedgerIDMainnet is the well-known mainnet ledger ID.
	LedgerIDMainnet = LedgerID{bytes: []byte{0}}
	// LedgerIDTestnet is the well-known testnet ledger ID.
	LedgerIDTestnet = LedgerID{bytes: []byte{1}}
	// LedgerIDPreviewnet is the well-known previewnet ledger ID.
	LedgerIDPreviewnet = LedgerID{bytes: []byte{2}}
)

// NewLedgerIDFromBytes wraps an arbitrary byte string as a custom ledger ID.
func NewLedgerIDFromBytes(b []byte) LedgerID {
	cp := make([]byte, len(b))
	copy(cp, b)
	return LedgerID{bytes: cp}
}

// Bytes returns the raw ledger ID bytes.
func (l LedgerID) Bytes() []byte { return l.bytes }

// Equal reports whether two ledger IDs are the same.
func (l LedgerID) Equal(other LedgerID) bool { return bytes.Equal(l.bytes, other.bytes) }

func (l LedgerID) String() string {
	switch {
	case l.Equal(LedgerIDMainnet):
		return "mainnet"
	case l.Equal(LedgerIDTestnet):
		return "testnet"
	case l.Equal(LedgerIDPreviewnet):
		return "previewnet"
	default:
		return "custom"
	}
}

// LedgerIDForName resolves one of the three named networks, or reports ok
// == false for an unrecognized name.
func LedgerIDForName(name string) (LedgerID, bool) {
	switch name {
	case "mainnet":
		return LedgerIDMainnet, true
	case "testnet":
		return LedgerIDTestnet, true
	case "previewnet":
		return LedgerIDPreviewnet, true
	default:
		return LedgerID{}, false
	}
}
