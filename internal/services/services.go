// Package services models the wire messages exchanged with consensus and
// mirror nodes. The real codec is protobuf (assumed available per
// spec §1's out-of-scope list, normally generated from .proto files by
// google.golang.org/protobuf's protoc-gen-go); this package stands in for
// that generated code with hand-written structs and a plain JSON
// encoding, so the execution engine and chunked driver have a
// concrete, round-trippable byte representation to build and parse
// without requiring a protoc toolchain run. See DESIGN.md.
package services

import "encoding/json"

// AccountIDPB is the wire shape of an account/node identifier.
type AccountIDPB struct {
	ShardNum uint64 `json:"shardNum"`
	RealmNum uint64 `json:"realmNum"`
	Num      uint64 `json:"num"`
}

// TimestampPB is the wire shape of a valid-start instant.
type TimestampPB struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// TransactionIDPB is the wire shape of a TransactionID.
type TransactionIDPB struct {
	AccountID  AccountIDPB `json:"accountID"`
	ValidStart TimestampPB `json:"validStart"`
	Nonce      int32       `json:"nonce,omitempty"`
	Scheduled  bool        `json:"scheduled,omitempty"`
}

// SignaturePairPB is one (public-key-prefix, signature-bytes) entry of a
// SignatureMapPB.
type SignaturePairPB struct {
	PubKeyPrefix []byte `json:"pubKeyPrefix"`
	Signature    []byte `json:"signature"`
}

// SignatureMapPB carries every signer's signature over one chunk's body
// bytes.
type SignatureMapPB struct {
	SigPair []SignaturePairPB `json:"sigPair"`
}

// TransactionBodyPB is the node-scoped, transaction-ID-scoped envelope
// body. Data carries the concrete request kind's own marshaled payload
// (opaque to the engine).
type TransactionBodyPB struct {
	TransactionID  TransactionIDPB `json:"transactionID"`
	NodeAccountID  AccountIDPB     `json:"nodeAccountID"`
	TransactionFee uint64          `json:"transactionFee"`
	Memo           string          `json:"memo,omitempty"`
	Data           []byte          `json:"data"`
	ChunkInfo      *ChunkInfoPB    `json:"chunkInfo,omitempty"`
}

// ChunkInfoPB is the wire shape of ChunkInfo (spec §3).
type ChunkInfoPB struct {
	Current     int32           `json:"current"`
	Total       int32           `json:"total"`
	InitialTxID TransactionIDPB `json:"initialTxID"`
}

// SignedTransactionPB pairs a marshaled TransactionBodyPB with its
// signature map (spec §6 transaction envelope).
type SignedTransactionPB struct {
	BodyBytes []byte         `json:"bodyBytes"`
	SigMap    SignatureMapPB `json:"sigMap"`
}

// TransactionPB is the outermost wire wrapper (spec §6: "the envelope is
// nested once more as an outer Transaction{signed_transaction_bytes}").
type TransactionPB struct {
	SignedTransactionBytes []byte `json:"signedTransactionBytes"`
}

// TransactionResponsePB is the immediate (precheck-only) reply to
// submitting a TransactionPB.
type TransactionResponsePB struct {
	NodeTransactionPrecheckCode int32  `json:"nodeTransactionPrecheckCode"`
	Cost                        uint64 `json:"cost,omitempty"`
}

// TransactionReceiptPB is the small terminal-state summary of a
// transaction.
type TransactionReceiptPB struct {
	Status              int32        `json:"status"`
	AccountID           *AccountIDPB `json:"accountID,omitempty"`
	TopicSequenceNumber uint64       `json:"topicSequenceNumber,omitempty"`
}

// TransactionGetReceiptResponsePB is the reply to a receipt query.
type TransactionGetReceiptResponsePB struct {
	PrecheckCode int32                `json:"precheckCode"`
	Receipt      TransactionReceiptPB `json:"receipt"`
}

// TransactionRecordPB is the detailed, payable summary of a transaction.
type TransactionRecordPB struct {
	Receipt         TransactionReceiptPB `json:"receipt"`
	TransactionHash []byte               `json:"transactionHash"`
	TransactionID   TransactionIDPB      `json:"transactionID"`
	Memo            string               `json:"memo,omitempty"`
	TransactionFee  uint64               `json:"transactionFee"`
}

// TransactionGetRecordResponsePB is the reply to a record query.
type TransactionGetRecordResponsePB struct {
	PrecheckCode int32               `json:"precheckCode"`
	Record       TransactionRecordPB `json:"record"`
}

// CryptoGetAccountBalanceResponsePB is the reply to an account balance
// query.
type CryptoGetAccountBalanceResponsePB struct {
	PrecheckCode int32       `json:"precheckCode"`
	AccountID    AccountIDPB `json:"accountID"`
	Balance      uint64      `json:"balance"`
	Cost         uint64      `json:"cost,omitempty"`
}

// AccountBalanceQueryPB is the wire shape of an account balance request,
// including the COST_ANSWER/ANSWER_ONLY response-type flag used by
// AccountBalanceQuery.GetCost's zero-payment round trip.
type AccountBalanceQueryPB struct {
	AccountID  AccountIDPB `json:"accountID"`
	CostAnswer bool        `json:"costAnswer,omitempty"`
	Payment    []byte      `json:"payment,omitempty"`
}

// ResponseCodeHeaderPB is embedded by replies that carry only a precheck
// code and no further payload (e.g. a ping).
type ResponseCodeHeaderPB struct {
	PrecheckCode int32 `json:"precheckCode"`
}

// ServiceEndpointPB is one IPv4 endpoint of a node address book entry.
type ServiceEndpointPB struct {
	IPAddressV4 [4]byte `json:"ipAddressV4"`
	Port        int32   `json:"port"`
}

// NodeAddressPB is one entry of a NodeAddressBookPB.
type NodeAddressPB struct {
	NodeAccountID   AccountIDPB         `json:"nodeAccountID"`
	ServiceEndpoint []ServiceEndpointPB `json:"serviceEndpoint"`
	Description     string              `json:"description,omitempty"`
}

// NodeAddressBookPB is the authoritative list of consensus nodes, as
// returned by a mirror node address-book query.
type NodeAddressBookPB struct {
	NodeAddress []NodeAddressPB `json:"nodeAddress"`
}

// Marshal and Unmarshal are the boundary the execution engine calls
// through — swapping these two functions (and the struct tags above) for
// real protobuf generated code is the only change needed to move from
// this stand-in codec to the wire-compatible one.
func Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
