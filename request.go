package ledgersdk

import (
	"context"

	"google.golang.org/grpc"
)

// BuildResult is returned by Request.BuildRequest: the wire bytes for one
// attempt, plus an opaque context value handed back to ParseResponse on
// success (spec §4.B).
type BuildResult struct {
	Wire []byte
	Ctx  any
}

// Reply is the generic shape of a reply the engine can classify without
// knowing the concrete request kind: a precheck status code and the raw
// bytes for ShouldRetry/ParseResponse to decode.
type Reply struct {
	PrecheckStatus Status
	Raw            []byte
}

// Request is the capability every concrete request/query type implements
// (spec §4.B). The execution engine is written entirely against this
// interface — it never enumerates concrete request kinds.
type Request interface {
	// ExplicitNodeIDs returns the caller-chosen node list, or nil for "any
	// healthy".
	ExplicitNodeIDs() []AccountID

	// ExplicitTransactionID returns the identifier the caller pinned, if
	// any.
	ExplicitTransactionID() (TransactionID, bool)

	// RequiresTransactionID reports whether the engine must mint one
	// before the first attempt, when the caller has not pinned one.
	RequiresTransactionID() bool

	// BuildRequest produces one attempt's wire bytes and opaque context.
	// txID is the zero value if RequiresTransactionID is false and none
	// was pinned.
	BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error)

	// Execute performs the remote call.
	Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error)

	// ShouldRetryPrecheck reports true for server-transient statuses
	// specific to this request kind, beyond the universally-transient set
	// the engine already recognizes (Busy, PlatformNotActive).
	ShouldRetryPrecheck(status Status) bool

	// ShouldRetry reports true when reply carries a still-pending result
	// (used by specialized pollers; most requests return false always).
	ShouldRetry(reply Reply) bool

	// ParseResponse converts a successful reply into a typed result.
	ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error)

	// MapPrecheckError returns a typed error for a non-OK precheck code.
	MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error

	// PrecheckStatusOf extracts the precheck code from reply, which
	// ParseResponse/ShouldRetryPrecheck/etc can also inspect via
	// reply.PrecheckStatus directly; this hook exists for request kinds
	// whose precheck code lives somewhere other than the reply's own
	// top-level status field once decoded.
	PrecheckStatusOf(reply Reply) Status
}

// ChecksumValidator is implemented by requests carrying embedded entity
// IDs that should be validated against the active ledger before the first
// attempt (spec §4.B's validate_checksums hook). Requests with no
// embedded IDs need not implement it.
type ChecksumValidator interface {
	ValidateChecksums(ledger LedgerID) error
}

// ChunkedRequest is implemented by requests whose payload may span more
// than one wire transaction (spec §4.D). Non-chunked requests need not
// implement it; ExecuteChunked takes one directly.
type ChunkedRequest interface {
	Request

	// ChunkData returns the declared max-chunks, chunk-size, and full
	// payload.
	ChunkData() (maxChunks int, chunkSize int, payload []byte)

	// WaitForReceiptBetweenChunks reports whether chunks after the first
	// must have their receipt observed before the next chunk is sent.
	WaitForReceiptBetweenChunks() bool

	// WithChunk returns a copy of the request scoped to a single chunk's
	// slice of the payload and its ChunkInfo, used to build that chunk's
	// wire bytes via BuildRequest.
	WithChunk(info ChunkInfo) Request
}
