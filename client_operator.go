package ledgersdk

import (
	"sync/atomic"
)

// Signer signs bytes (a serialized transaction body) and returns a
// signature suitable for embedding in a SignaturePair.
type Signer func(message []byte) (signature []byte, publicKeyBytes []byte, err error)

// Operator is the account that pays for and authorizes requests issued
// through a Client: its account ID (used to mint transaction IDs) and a
// Signer (used by Transaction.Sign / Transaction.FreezeWith).
type Operator struct {
	AccountID AccountID
	Sign      Signer
}

// operatorCell holds an atomically-swappable *Operator (spec §4.F:
// "atomically-swappable operator"), read on every Engine.Execute call
// without locking.
type operatorCell struct {
	v atomic.Pointer[Operator]
}

func newOperatorCell(op *Operator) *operatorCell {
	c := &operatorCell{}
	c.v.Store(op)
	return c
}

// Set atomically replaces the operator (nil clears it).
func (c *operatorCell) Set(op *Operator) { c.v.Store(op) }

// Get returns the current operator, or nil if none is set.
func (c *operatorCell) Get() *Operator { return c.v.Load() }

// PayerAccountID returns the current operator's account ID, and whether
// an operator is set at all.
func (c *operatorCell) PayerAccountID() (AccountID, bool) {
	op := c.v.Load()
	if op == nil {
		return AccountID{}, false
	}
	return op.AccountID, true
}
