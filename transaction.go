package ledgersdk

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// DefaultMaxTransactionFee bounds the fee a transaction will declare
// willingness to pay, absent an explicit SetMaxTransactionFee call.
const DefaultMaxTransactionFee = 2_000_000_000 // tinybar-equivalent units

// TransactionResponse is the typed result of a successfully submitted
// transaction: the node it was accepted by and its identifier, which the
// caller hands to a TransactionReceiptQuery/TransactionRecordQuery to
// observe the terminal outcome. Hash is the SHA-384 digest of the signed
// transaction bytes actually submitted, deterministic for a given signed
// form and usable to look the transaction up in an explorer.
type TransactionResponse struct {
	NodeID        AccountID
	TransactionID TransactionID
	Hash          []byte
}

// Transaction is the mutable-until-frozen base embedded by every concrete
// transaction kind (TransferTransaction, FreezeTransaction, ...). Its
// lifecycle (spec §3): fields are freely settable until Freeze/FreezeWith
// is called, at which point the node list, transaction ID, memo, and max
// fee are fixed, and every subsequent signed form is derived from that
// frozen state.
type Transaction struct {
	nodeAccountIDs   []AccountID
	transactionID    TransactionID
	hasTransactionID bool
	memo             string
	maxFee           uint64
	hasMaxFee        bool
	frozen           bool

	explicitSigners []Signer
	client          *Client // set by FreezeWith, used as the default signer

	source *TransactionSource
}

// SetNodeAccountIDs pins the candidate node list. Panics if already
// frozen, matching the teacher ecosystem's fail-fast convention for
// programmer errors (mutating a frozen builder) rather than returning an
// error for what is always a caller bug.
func (t *Transaction) SetNodeAccountIDs(ids []AccountID) *Transaction {
	t.mustNotBeFrozen()
	t.nodeAccountIDs = append([]AccountID(nil), ids...)
	return t
}

// SetTransactionID pins an explicit transaction ID, overriding the
// engine's own minting.
func (t *Transaction) SetTransactionID(id TransactionID) *Transaction {
	t.mustNotBeFrozen()
	t.transactionID = id
	t.hasTransactionID = true
	return t
}

// SetTransactionMemo sets the transaction's memo field.
func (t *Transaction) SetTransactionMemo(memo string) *Transaction {
	t.mustNotBeFrozen()
	t.memo = memo
	return t
}

// SetMaxTransactionFee sets the declared maximum fee.
func (t *Transaction) SetMaxTransactionFee(fee uint64) *Transaction {
	t.mustNotBeFrozen()
	t.maxFee = fee
	t.hasMaxFee = true
	return t
}

// AddSigner registers an additional required signer. A transaction with
// no explicit signers falls back to signing with the Client's operator
// key at execution time (one signature per attempt, re-derived fresh so
// a mid-flight operator swap is picked up on the next attempt).
func (t *Transaction) AddSigner(signer Signer) *Transaction {
	t.mustNotBeFrozen()
	t.explicitSigners = append(t.explicitSigners, signer)
	return t
}

// IsFrozen reports whether Freeze/FreezeWith has been called.
func (t *Transaction) IsFrozen() bool { return t.frozen }

// Freeze fixes the transaction's node list, ID, memo, and fee, without
// reference to a Client. The caller must already have set an explicit
// transaction ID (there is no operator to mint one from or default-sign
// with); Freeze fails without one. It does not check the node list, so
// the caller must also set that explicitly.
func (t *Transaction) Freeze() error {
	return t.freeze(nil)
}

// FreezeWith fixes the transaction against client's current network (as
// the node list, if none was explicitly set) and operator (to mint a
// transaction ID, if none was pinned, and as the default signer).
func (t *Transaction) FreezeWith(client *Client) error {
	return t.freeze(client)
}

func (t *Transaction) freeze(client *Client) error {
	if t.frozen {
		return nil
	}
	if len(t.nodeAccountIDs) == 0 && client != nil {
		snapshot := client.network.Load()
		for i := 0; i < snapshot.Len(); i++ {
			t.nodeAccountIDs = append(t.nodeAccountIDs, snapshot.Node(i).AccountID)
		}
	}
	if !t.hasTransactionID {
		if client == nil {
			return NewNoPayerAccountOrTransactionIDError()
		}
		payer, ok := client.operator.PayerAccountID()
		if !ok {
			return NewNoPayerAccountOrTransactionIDError()
		}
		t.transactionID = GenerateTransactionID(payer)
		t.hasTransactionID = true
	}
	if !t.hasMaxFee {
		t.maxFee = DefaultMaxTransactionFee
	}
	t.client = client
	t.source = newTransactionSource(t.nodeAccountIDs)
	t.frozen = true
	return nil
}

func (t *Transaction) mustNotBeFrozen() {
	if t.frozen {
		panic("ledgersdk: transaction is frozen and can no longer be modified")
	}
}

// ExplicitNodeIDs implements part of Request.
func (t *Transaction) ExplicitNodeIDs() []AccountID { return t.nodeAccountIDs }

// ExplicitTransactionID implements part of Request.
func (t *Transaction) ExplicitTransactionID() (TransactionID, bool) {
	return t.transactionID, t.hasTransactionID
}

// RequiresTransactionID implements part of Request: every transaction
// (as opposed to a query) needs one.
func (t *Transaction) RequiresTransactionID() bool { return true }

// effectiveSigners returns the explicit signer set, or the Client
// operator's signer as a single-element fallback.
func (t *Transaction) effectiveSigners() ([]Signer, error) {
	if len(t.explicitSigners) > 0 {
		return t.explicitSigners, nil
	}
	if t.client != nil {
		if op := t.client.operator.Get(); op != nil {
			return []Signer{op.Sign}, nil
		}
	}
	return nil, NewSignatureError(errors.New("no signer available: set an operator on the Client or call AddSigner"))
}

// buildSignedWire assembles the shared TransactionBodyPB envelope,
// signs it with every effective signer (deduping by public key prefix,
// first-seen wins), and returns the wire-ready signed envelope bytes
// plus its SHA-384 hash. data is the concrete transaction kind's own
// marshaled payload, opaque at this layer; chunkInfo is nil for
// non-chunked requests.
func (t *Transaction) buildSignedWire(txID TransactionID, nodeID AccountID, data []byte, chunkInfo *ChunkInfo) (wire []byte, hash []byte, err error) {
	body := services.TransactionBodyPB{
		TransactionID:  transactionIDToPB(txID, txID.HasNonce()),
		NodeAccountID:  accountIDToPB(nodeID),
		TransactionFee: t.maxFee,
		Memo:           t.memo,
		Data:           data,
	}
	chunk := 0
	if chunkInfo != nil {
		chunk = chunkInfo.Current
		body.ChunkInfo = &services.ChunkInfoPB{
			Current:     int32(chunkInfo.Current),
			Total:       int32(chunkInfo.Total),
			InitialTxID: transactionIDToPB(chunkInfo.InitialTxID, chunkInfo.InitialTxID.HasNonce()),
		}
	}
	bodyBytes, err := services.Marshal(&body)
	if err != nil {
		return nil, nil, NewFromProtobufError("failed to encode transaction body", err)
	}
	if t.source == nil {
		t.source = newTransactionSource(t.nodeAccountIDs)
	}
	t.source.setBody(nodeID, chunk, bodyBytes)

	signers, err := t.effectiveSigners()
	if err != nil {
		return nil, nil, err
	}
	for _, signer := range signers {
		sig, pubKey, err := signer(bodyBytes)
		if err != nil {
			return nil, nil, NewSignatureError(err)
		}
		t.source.addSignature(nodeID, chunk, services.SignaturePairPB{
			PubKeyPrefix: pubKey,
			Signature:    sig,
		})
	}

	pb, ok := t.source.signedTransaction(nodeID, chunk)
	if !ok {
		return nil, nil, NewBasicParseError("transaction body was not built before signing", nil)
	}
	wire, err = services.Marshal(&pb)
	if err != nil {
		return nil, nil, NewFromProtobufError("failed to encode signed transaction envelope", err)
	}
	sum := sha512.Sum384(wire)
	return wire, sum[:], nil
}

// signaturePrefixKey renders a public key (prefix) as a map key for
// dedup purposes.
func signaturePrefixKey(pubKeyPrefix []byte) string {
	return hex.EncodeToString(pubKeyPrefix)
}
