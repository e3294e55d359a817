package ledgersdk

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// fakeChunkedRequest is a minimal ChunkedRequest exercising ExecuteChunked
// end-to-end against internal/inproc, mirroring the shape a real
// FileAppendTransaction/TopicMessageSubmitTransaction presents without its
// signing machinery.
type fakeChunkedRequest struct {
	nodeID    AccountID
	payload   []byte
	chunkSize int
	maxChunks int
}

var _ ChunkedRequest = (*fakeChunkedRequest)(nil)

func (r *fakeChunkedRequest) ExplicitNodeIDs() []AccountID { return []AccountID{r.nodeID} }

func (r *fakeChunkedRequest) ExplicitTransactionID() (TransactionID, bool) { return TransactionID{}, false }

func (r *fakeChunkedRequest) RequiresTransactionID() bool { return true }

func (r *fakeChunkedRequest) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
	return (&chunkAttempt{nodeID: nodeID, txID: txID}).BuildRequest(txID, hasTxID, nodeID)
}

func (r *fakeChunkedRequest) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeTransactionSubmit(ctx, channel, "/proto.FileService/appendContent", wire)
}

func (r *fakeChunkedRequest) ShouldRetryPrecheck(Status) bool { return false }

func (r *fakeChunkedRequest) ShouldRetry(Reply) bool { return false }

func (r *fakeChunkedRequest) ParseResponse(_ Reply, _ any, _ AccountID, txID TransactionID, _ bool) (any, error) {
	return txID, nil
}

func (r *fakeChunkedRequest) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionNoIDPreCheckStatusError(int32(status))
}

func (r *fakeChunkedRequest) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }

func (r *fakeChunkedRequest) ChunkData() (int, int, []byte) { return r.maxChunks, r.chunkSize, r.payload }

func (r *fakeChunkedRequest) WaitForReceiptBetweenChunks() bool { return false }

func (r *fakeChunkedRequest) WithChunk(info ChunkInfo) Request {
	return &chunkAttempt{nodeID: r.nodeID, txID: info.CurrentTxID}
}

// chunkAttempt is the single-chunk Request ExecuteChunked drives per
// iteration, carrying its chunk's pinned transaction ID.
type chunkAttempt struct {
	nodeID AccountID
	txID   TransactionID
}

var _ Request = (*chunkAttempt)(nil)

func (c *chunkAttempt) ExplicitNodeIDs() []AccountID { return []AccountID{c.nodeID} }

func (c *chunkAttempt) ExplicitTransactionID() (TransactionID, bool) { return c.txID, true }

func (c *chunkAttempt) RequiresTransactionID() bool { return true }

func (c *chunkAttempt) BuildRequest(txID TransactionID, _ bool, nodeID AccountID) (BuildResult, error) {
	body := services.TransactionBodyPB{
		NodeAccountID: accountIDToPB(nodeID),
		TransactionID: transactionIDToPB(txID, false),
	}
	wire, err := services.Marshal(&body)
	if err != nil {
		return BuildResult{}, NewFromProtobufError("failed to encode chunk", err)
	}
	return BuildResult{Wire: wire}, nil
}

func (c *chunkAttempt) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeTransactionSubmit(ctx, channel, "/proto.FileService/appendContent", wire)
}

func (c *chunkAttempt) ShouldRetryPrecheck(Status) bool { return false }

func (c *chunkAttempt) ShouldRetry(Reply) bool { return false }

func (c *chunkAttempt) ParseResponse(_ Reply, _ any, _ AccountID, txID TransactionID, _ bool) (any, error) {
	return txID, nil
}

func (c *chunkAttempt) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionNoIDPreCheckStatusError(int32(status))
}

func (c *chunkAttempt) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }

// TestExecuteChunked_SplitsAndOrdersChunks drives spec scenario 5: a
// 5000-byte payload with a 2048-byte chunk size produces 3 chunks, whose
// transaction IDs share chunk 0's valid-start plus 0/1/2 nanoseconds, and
// chunk 0's receipt is awaited before chunk 1 is ever dispatched.
func TestExecuteChunked_SplitsAndOrdersChunks(t *testing.T) {
	nodeID := AccountID{Num: 40}

	var mu sync.Mutex
	var submitted []TransactionID

	ch := newTestInprocChannel(t)
	ch.Handle("/proto.FileService/appendContent", func(ctx context.Context, wire []byte) ([]byte, error) {
		var body services.TransactionBodyPB
		if err := services.Unmarshal(wire, &body); err != nil {
			return nil, err
		}
		mu.Lock()
		submitted = append(submitted, transactionIDFromPB(body.TransactionID))
		mu.Unlock()
		return services.Marshal(&services.TransactionResponsePB{NodeTransactionPrecheckCode: int32(StatusOk)})
	})

	snapshot := newFakeSnapshot(map[AccountID]grpc.ClientConnInterface{nodeID: ch.Conn()})
	eng := newTestEngine(t, snapshot, time.Minute)
	eng.operator = newOperatorCell(&Operator{AccountID: AccountID{Num: 1}})

	req := &fakeChunkedRequest{nodeID: nodeID, payload: make([]byte, 5000), chunkSize: 2048, maxChunks: 20}

	var waitOrder []string
	waitReceipt := func(_ context.Context, txID TransactionID) error {
		mu.Lock()
		waitOrder = append(waitOrder, txID.String())
		mu.Unlock()
		return nil
	}

	results, err := ExecuteChunked(context.Background(), eng, req, waitReceipt)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Len(t, submitted, 3)

	assert.Equal(t, submitted[0].ValidStart.Add(time.Nanosecond), submitted[1].ValidStart)
	assert.Equal(t, submitted[0].ValidStart.Add(2*time.Nanosecond), submitted[2].ValidStart)

	require.Len(t, waitOrder, 1, "by default only chunk 0's receipt is awaited")
	assert.Equal(t, submitted[0].String(), waitOrder[0])
}

// TestExecuteChunked_RejectsPayloadExceedingMaxChunks checks the
// declared-maximum guard (spec §4.D, MaxChunksExceeded).
func TestExecuteChunked_RejectsPayloadExceedingMaxChunks(t *testing.T) {
	nodeID := AccountID{Num: 41}
	ch := newTestInprocChannel(t)

	snapshot := newFakeSnapshot(map[AccountID]grpc.ClientConnInterface{nodeID: ch.Conn()})
	eng := newTestEngine(t, snapshot, time.Minute)
	eng.operator = newOperatorCell(&Operator{AccountID: AccountID{Num: 1}})

	req := &fakeChunkedRequest{nodeID: nodeID, payload: make([]byte, 5000), chunkSize: 2048, maxChunks: 2}

	_, err := ExecuteChunked(context.Background(), eng, req, nil)
	require.Error(t, err)
}
