package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// pingQuery is the internal "is this node alive" probe the engine issues
// before dispatching to a candidate it hasn't used recently (spec §4.C,
// §9 "Ping correctness"). It is itself just another Request, executed
// through Engine.Execute with an explicit single-node target — which, per
// the candidate-selection rule that explicit-list candidates skip the
// ping step, is what keeps this from recursing forever during a
// network-wide outage.
type pingQuery struct {
	nodeID AccountID
}

var _ Request = (*pingQuery)(nil)

func (p *pingQuery) ExplicitNodeIDs() []AccountID { return []AccountID{p.nodeID} }

func (p *pingQuery) ExplicitTransactionID() (TransactionID, bool) { return TransactionID{}, false }

func (p *pingQuery) RequiresTransactionID() bool { return false }

func (p *pingQuery) BuildRequest(_ TransactionID, _ bool, nodeID AccountID) (BuildResult, error) {
	wire, err := services.Marshal(&services.AccountBalanceQueryPB{AccountID: accountIDToPB(nodeID)})
	if err != nil {
		return BuildResult{}, NewFromProtobufError("failed to encode ping", err)
	}
	return BuildResult{Wire: wire}, nil
}

func (p *pingQuery) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeCryptoGetAccountBalance(ctx, channel, wire)
}

func (p *pingQuery) ShouldRetryPrecheck(Status) bool { return false }

func (p *pingQuery) ShouldRetry(Reply) bool { return false }

func (p *pingQuery) ParseResponse(Reply, any, AccountID, TransactionID, bool) (any, error) {
	return nil, nil
}

func (p *pingQuery) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionNoIDPreCheckStatusError(int32(status))
}

func (p *pingQuery) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }
