package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// DefaultTopicMessageChunkSize matches the upstream SDKs' conservative
// per-chunk message size for consensus topic submissions.
const DefaultTopicMessageChunkSize = 1024

type topicMessagePayloadPB struct {
	TopicID services.AccountIDPB `json:"topicID"`
	Message []byte               `json:"message"`
}

// TopicMessageSubmitTransaction submits a (possibly large) message to a
// consensus topic, splitting it across chunks exactly like
// FileAppendTransaction; the two exist as separate types because the
// upstream wire services they target differ, not because the chunking
// mechanics do.
type TopicMessageSubmitTransaction struct {
	Transaction

	topicID   TopicID
	message   []byte
	chunkSize int
	maxChunks int

	waitForReceipt bool
	chunk          ChunkInfo
}

var _ ChunkedRequest = (*TopicMessageSubmitTransaction)(nil)

// NewTopicMessageSubmitTransaction returns an empty, unfrozen submission.
func NewTopicMessageSubmitTransaction() *TopicMessageSubmitTransaction {
	return &TopicMessageSubmitTransaction{chunkSize: DefaultTopicMessageChunkSize, maxChunks: DefaultMaxChunks}
}

func (t *TopicMessageSubmitTransaction) SetTopicID(id TopicID) *TopicMessageSubmitTransaction {
	t.mustNotBeFrozen()
	t.topicID = id
	return t
}

func (t *TopicMessageSubmitTransaction) SetMessage(message []byte) *TopicMessageSubmitTransaction {
	t.mustNotBeFrozen()
	t.message = message
	return t
}

func (t *TopicMessageSubmitTransaction) SetChunkSize(size int) *TopicMessageSubmitTransaction {
	t.mustNotBeFrozen()
	t.chunkSize = size
	return t
}

func (t *TopicMessageSubmitTransaction) SetMaxChunks(max int) *TopicMessageSubmitTransaction {
	t.mustNotBeFrozen()
	t.maxChunks = max
	return t
}

func (t *TopicMessageSubmitTransaction) SetWaitForReceiptBetweenChunks(wait bool) *TopicMessageSubmitTransaction {
	t.mustNotBeFrozen()
	t.waitForReceipt = wait
	return t
}

func (t *TopicMessageSubmitTransaction) ChunkData() (maxChunks int, chunkSize int, payload []byte) {
	return t.maxChunks, t.chunkSize, t.message
}

func (t *TopicMessageSubmitTransaction) WaitForReceiptBetweenChunks() bool { return t.waitForReceipt }

func (t *TopicMessageSubmitTransaction) WithChunk(info ChunkInfo) Request {
	clone := *t
	clone.chunk = info
	data := ChunkData{MaxChunks: t.maxChunks, ChunkSize: t.chunkSize, Payload: t.message}
	clone.message = data.Slice(info.Current)
	return &clone
}

func (t *TopicMessageSubmitTransaction) ExplicitTransactionID() (TransactionID, bool) {
	if t.chunk.Total > 1 {
		return t.chunk.CurrentTxID, true
	}
	return t.Transaction.ExplicitTransactionID()
}

func (t *TopicMessageSubmitTransaction) payload() []byte {
	data, _ := services.Marshal(&topicMessagePayloadPB{TopicID: accountIDToPB(t.topicID), Message: t.message})
	return data
}

func (t *TopicMessageSubmitTransaction) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
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

func (t *TopicMessageSubmitTransaction) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeTransactionSubmit(ctx, channel, "/proto.ConsensusService/submitMessage", wire)
}

func (t *TopicMessageSubmitTransaction) ShouldRetryPrecheck(Status) bool { return false }

func (t *TopicMessageSubmitTransaction) ShouldRetry(Reply) bool { return false }

func (t *TopicMessageSubmitTransaction) ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error) {
	hash, _ := buildCtx.([]byte)
	return TransactionResponse{NodeID: nodeID, TransactionID: txID, Hash: hash}, nil
}

func (t *TopicMessageSubmitTransaction) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionPreCheckStatusError(int32(status), txID)
}

func (t *TopicMessageSubmitTransaction) PrecheckStatusOf(reply Reply) Status {
	return reply.PrecheckStatus
}
