package ledgersdk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ledgerkit/ledger-sdk-go/internal/inproc"
	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// testProbe is a minimal Request driving a single gRPC method against an
// explicit node list, used to exercise Engine.Execute end-to-end against
// internal/inproc without the signing/operator machinery a real
// transaction or query type carries. ParseResponse surfaces the
// responding node's account ID so a test can tell which candidate
// actually answered.
type testProbe struct {
	nodeIDs []AccountID
}

var _ Request = (*testProbe)(nil)

func (p *testProbe) ExplicitNodeIDs() []AccountID { return p.nodeIDs }

func (p *testProbe) ExplicitTransactionID() (TransactionID, bool) { return TransactionID{}, false }

func (p *testProbe) RequiresTransactionID() bool { return false }

func (p *testProbe) BuildRequest(_ TransactionID, _ bool, nodeID AccountID) (BuildResult, error) {
	body := services.TransactionBodyPB{NodeAccountID: accountIDToPB(nodeID)}
	wire, err := services.Marshal(&body)
	if err != nil {
		return BuildResult{}, NewFromProtobufError("failed to encode probe", err)
	}
	return BuildResult{Wire: wire}, nil
}

func (p *testProbe) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeCryptoGetAccountBalance(ctx, channel, wire)
}

func (p *testProbe) ShouldRetryPrecheck(Status) bool { return false }

func (p *testProbe) ShouldRetry(Reply) bool { return false }

func (p *testProbe) ParseResponse(_ Reply, _ any, nodeID AccountID, _ TransactionID, _ bool) (any, error) {
	return nodeID, nil
}

func (p *testProbe) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionNoIDPreCheckStatusError(int32(status))
}

func (p *testProbe) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }

// newInprocChannel starts a fake transport answering one precheck status
// for the balance-query method testProbe drives.
func newInprocChannel(t *testing.T, precheck Status) *inproc.Channel {
	t.Helper()
	ch := newTestInprocChannel(t)
	ch.Handle("/proto.CryptoService/cryptoGetBalance", func(ctx context.Context, wire []byte) ([]byte, error) {
		return services.Marshal(&services.CryptoGetAccountBalanceResponsePB{PrecheckCode: int32(precheck)})
	})
	return ch
}

// newInprocChannelErr starts a fake transport that always fails the call
// at the transport level with statusErr.
func newInprocChannelErr(t *testing.T, statusErr error) *inproc.Channel {
	t.Helper()
	ch := newTestInprocChannel(t)
	ch.Handle("/proto.CryptoService/cryptoGetBalance", func(ctx context.Context, wire []byte) ([]byte, error) {
		return nil, statusErr
	})
	return ch
}

// newFakeSnapshot builds a NetworkSnapshot whose node channels are
// pre-populated fake transports, skipping dialChannel entirely.
func newFakeSnapshot(conns map[AccountID]grpc.ClientConnInterface) *NetworkSnapshot {
	s := &NetworkSnapshot{byAccountID: make(map[AccountID]int, len(conns))}
	for id, conn := range conns {
		s.byAccountID[id] = len(s.nodes)
		s.nodes = append(s.nodes, &NodeEntry{AccountID: id, Health: NewNodeHealth(), channel: newChannelCellWithConn(id, conn)})
	}
	return s
}

// newTestEngine wires an Engine directly against snapshot, with a fast
// backoff policy so retry-driven tests don't pay the production
// 250ms-to-8s schedule.
func newTestEngine(t *testing.T, snapshot *NetworkSnapshot, timeout time.Duration) *Engine {
	t.Helper()
	net := NewManagedNetwork(snapshot, nil, nil)
	t.Cleanup(func() { _ = net.Close(context.Background()) })
	eng := NewEngine(
		net,
		newOperatorCell(nil),
		func() LedgerID { return LedgerID{} },
		func() bool { return false },
		func() time.Duration { return timeout },
		func() bool { return true },
		nil,
	)
	eng.backoff = BackoffPolicy{MinBackoff: 5 * time.Millisecond, MaxBackoff: 15 * time.Millisecond}
	return eng
}

// TestEngine_RetryOnBusy drives spec scenario 3: given candidates A (Busy)
// and B (Ok), a single attempt round returns B's reply without applying
// backoff, and leaves both nodes' health untouched.
func TestEngine_RetryOnBusy(t *testing.T) {
	nodeA := AccountID{Num: 10}
	nodeB := AccountID{Num: 11}

	chanA := newInprocChannel(t, StatusBusy)
	chanB := newInprocChannel(t, StatusOk)

	snapshot := newFakeSnapshot(map[AccountID]grpc.ClientConnInterface{
		nodeA: chanA.Conn(),
		nodeB: chanB.Conn(),
	})
	eng := newTestEngine(t, snapshot, time.Minute)

	start := time.Now()
	result, err := eng.Execute(context.Background(), &testProbe{nodeIDs: []AccountID{nodeA, nodeB}})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, nodeB, result)
	assert.Less(t, elapsed, 100*time.Millisecond, "a Busy-then-Ok round must not apply backoff")

	now := time.Now()
	assert.True(t, snapshot.IsHealthy(snapshot.byAccountID[nodeA], now), "a Busy precheck must not affect health")
	assert.True(t, snapshot.IsHealthy(snapshot.byAccountID[nodeB], now))
}

// TestEngine_UnhealthyOnTransportUnavailable drives spec scenario 4: a
// transport Unavailable classifies as outcomeNextCandidateUnhealthy,
// quarantining the node for 30 minutes from the moment it was marked.
func TestEngine_UnhealthyOnTransportUnavailable(t *testing.T) {
	nodeA := AccountID{Num: 20}
	chanA := newInprocChannelErr(t, status.Error(codes.Unavailable, "node down"))

	snapshot := newFakeSnapshot(map[AccountID]grpc.ClientConnInterface{nodeA: chanA.Conn()})
	eng := newTestEngine(t, snapshot, 50*time.Millisecond)

	before := time.Now()
	_, err := eng.Execute(context.Background(), &testProbe{nodeIDs: []AccountID{nodeA}})
	require.Error(t, err, "every candidate transport-failing must eventually time out")

	idx := snapshot.byAccountID[nodeA]
	assert.False(t, snapshot.IsHealthy(idx, before.Add(10*time.Minute)))
	assert.True(t, snapshot.IsHealthy(idx, before.Add(31*time.Minute)))
}

// TestEngine_ExplicitListFallbackToUnhealthy drives spec scenario 7: an
// explicit node list whose only member is already unhealthy is still
// dispatched to (last-resort fallback), rather than failing outright
// without ever trying it.
func TestEngine_ExplicitListFallbackToUnhealthy(t *testing.T) {
	nodeA := AccountID{Num: 30}
	chanA := newInprocChannel(t, StatusOk)

	snapshot := newFakeSnapshot(map[AccountID]grpc.ClientConnInterface{nodeA: chanA.Conn()})
	idx := snapshot.byAccountID[nodeA]
	snapshot.MarkUnhealthy(idx, time.Now())
	require.False(t, snapshot.IsHealthy(idx, time.Now()))

	eng := newTestEngine(t, snapshot, time.Minute)

	result, err := eng.Execute(context.Background(), &testProbe{nodeIDs: []AccountID{nodeA}})
	require.NoError(t, err, "the unhealthy explicit node must still be dispatched to, not skipped outright")
	assert.Equal(t, nodeA, result)
}
