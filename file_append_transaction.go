package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// DefaultFileAppendChunkSize matches the upstream SDKs' conservative
// per-chunk payload size, staying well under a single transaction's
// network-imposed size ceiling.
const DefaultFileAppendChunkSize = 4096

// DefaultMaxChunks bounds how many chunks a chunked transaction will
// split into before refusing with MaxChunksExceeded, absent an explicit
// SetMaxChunks call.
const DefaultMaxChunks = 20

type fileAppendPayloadPB struct {
	FileID   services.AccountIDPB `json:"fileID"`
	Contents []byte               `json:"contents"`
}

// FileAppendTransaction appends bytes to an existing file, splitting the
// content across as many chunks as required (spec §4.D): the canonical
// chunked-request example.
type FileAppendTransaction struct {
	Transaction

	fileID    FileID
	contents  []byte
	chunkSize int
	maxChunks int

	waitForReceipt bool

	// set by WithChunk to scope BuildRequest to one chunk; zero value
	// means "unchunked view" (only valid before ExecuteChunked slices it).
	chunk ChunkInfo
}

var _ ChunkedRequest = (*FileAppendTransaction)(nil)

// NewFileAppendTransaction returns an empty, unfrozen file append.
func NewFileAppendTransaction() *FileAppendTransaction {
	return &FileAppendTransaction{chunkSize: DefaultFileAppendChunkSize, maxChunks: DefaultMaxChunks}
}

func (t *FileAppendTransaction) SetFileID(id FileID) *FileAppendTransaction {
	t.mustNotBeFrozen()
	t.fileID = id
	return t
}

func (t *FileAppendTransaction) SetContents(contents []byte) *FileAppendTransaction {
	t.mustNotBeFrozen()
	t.contents = contents
	return t
}

func (t *FileAppendTransaction) SetChunkSize(size int) *FileAppendTransaction {
	t.mustNotBeFrozen()
	t.chunkSize = size
	return t
}

func (t *FileAppendTransaction) SetMaxChunks(max int) *FileAppendTransaction {
	t.mustNotBeFrozen()
	t.maxChunks = max
	return t
}

// SetWaitForReceiptBetweenChunks requires each chunk's receipt (not just
// its immediate precheck) to be observed before the next chunk is sent,
// trading latency for a guarantee that chunk k-1 actually reached
// consensus before k is appended.
func (t *FileAppendTransaction) SetWaitForReceiptBetweenChunks(wait bool) *FileAppendTransaction {
	t.mustNotBeFrozen()
	t.waitForReceipt = wait
	return t
}

// ChunkData implements ChunkedRequest.
func (t *FileAppendTransaction) ChunkData() (maxChunks int, chunkSize int, payload []byte) {
	return t.maxChunks, t.chunkSize, t.contents
}

// WaitForReceiptBetweenChunks implements ChunkedRequest.
func (t *FileAppendTransaction) WaitForReceiptBetweenChunks() bool { return t.waitForReceipt }

// WithChunk implements ChunkedRequest: it returns a shallow copy scoped
// to one chunk's slice of the payload.
func (t *FileAppendTransaction) WithChunk(info ChunkInfo) Request {
	clone := *t
	clone.chunk = info
	data := ChunkData{MaxChunks: t.maxChunks, ChunkSize: t.chunkSize, Payload: t.contents}
	clone.contents = data.Slice(info.Current)
	return &clone
}

// ExplicitTransactionID overrides Transaction's: chunks after the first
// carry their own nanosecond-advanced identifier (set by WithChunk via
// ExecuteChunked), not the transaction's original pinned/minted one.
func (t *FileAppendTransaction) ExplicitTransactionID() (TransactionID, bool) {
	if t.chunk.Total > 1 {
		return t.chunk.CurrentTxID, true
	}
	return t.Transaction.ExplicitTransactionID()
}

func (t *FileAppendTransaction) payload() []byte {
	data, _ := services.Marshal(&fileAppendPayloadPB{FileID: accountIDToPB(t.fileID), Contents: t.contents})
	return data
}

func (t *FileAppendTransaction) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
	if !hasTxID {
		return BuildResult{}, NewNoPayerAccountOrTransactionIDError()
	}
	info := t.chunk
	info.NodeID = nodeID
	if info.Total == 0 {
		info = ChunkInfo{Current: 0, Total: 1, InitialTxID: txID, CurrentTxID: txID, NodeID: nodeID}
	}
	wire, hash, err := t.buildSignedWire(txID, nodeID, t.payload(), &info)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Wire: wire, Ctx: hash}, nil
}

func (t *FileAppendTransaction) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeTransactionSubmit(ctx, channel, "/proto.FileService/appendContent", wire)
}

func (t *FileAppendTransaction) ShouldRetryPrecheck(Status) bool { return false }

func (t *FileAppendTransaction) ShouldRetry(Reply) bool { return false }

func (t *FileAppendTransaction) ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error) {
	hash, _ := buildCtx.([]byte)
	return TransactionResponse{NodeID: nodeID, TransactionID: txID, Hash: hash}, nil
}

func (t *FileAppendTransaction) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionPreCheckStatusError(int32(status), txID)
}

func (t *FileAppendTransaction) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }
