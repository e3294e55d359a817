package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// AccountBalanceQuery retrieves an account's current balance. It is the
// canonical example of a (optionally) paid Query, and the only query
// kind exposing GetCost (§12 "Query cost estimation").
type AccountBalanceQuery struct {
	Query

	accountID AccountID
	costOnly  bool
}

var _ Request = (*AccountBalanceQuery)(nil)
var _ ChecksumValidator = (*AccountBalanceQuery)(nil)

func NewAccountBalanceQuery() *AccountBalanceQuery {
	return &AccountBalanceQuery{}
}

func (q *AccountBalanceQuery) SetAccountID(id AccountID) *AccountBalanceQuery {
	q.accountID = id
	return q
}

// ValidateChecksums checks the embedded account ID's checksum, if this
// query was constructed from a checksum-bearing string elsewhere; this
// module's AccountBalanceQuery is always built from a parsed AccountID,
// so there is nothing further to validate at this layer — the check
// happens in ParseAccountID/ValidateChecksum at input time.
func (q *AccountBalanceQuery) ValidateChecksums(ledger LedgerID) error {
	return nil
}

// GetCost performs a zero-payment ("cost answer") round trip through the
// same engine used for the real query, returning the tinybar-equivalent
// cost the node reports for answering it for real (§12).
func (q *AccountBalanceQuery) GetCost(ctx context.Context, client *Client) (uint64, error) {
	costQuery := &AccountBalanceQuery{Query: q.Query, accountID: q.accountID, costOnly: true}
	result, err := client.engine.Execute(ctx, costQuery)
	if err != nil {
		return 0, err
	}
	bal, ok := result.(AccountBalance)
	if !ok {
		return 0, NewFromProtobufError("cost query returned an unexpected result shape", nil)
	}
	return bal.Cost, nil
}

func (q *AccountBalanceQuery) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
	wire, err := services.Marshal(&services.AccountBalanceQueryPB{
		AccountID:  accountIDToPB(q.accountID),
		CostAnswer: q.costOnly,
	})
	if err != nil {
		return BuildResult{}, NewFromProtobufError("failed to encode balance query", err)
	}
	return BuildResult{Wire: wire}, nil
}

func (q *AccountBalanceQuery) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeCryptoGetAccountBalance(ctx, channel, wire)
}

func (q *AccountBalanceQuery) ShouldRetryPrecheck(Status) bool { return false }

func (q *AccountBalanceQuery) ShouldRetry(Reply) bool { return false }

// AccountBalance is the typed result of a successful AccountBalanceQuery.
type AccountBalance struct {
	AccountID AccountID
	Balance   uint64
	Cost      uint64
}

func (q *AccountBalanceQuery) ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error) {
	var resp services.CryptoGetAccountBalanceResponsePB
	if err := services.Unmarshal(reply.Raw, &resp); err != nil {
		return nil, NewFromProtobufError("failed to decode balance response", err)
	}
	return AccountBalance{
		AccountID: accountIDFromPB(resp.AccountID),
		Balance:   resp.Balance,
		Cost:      resp.Cost,
	}, nil
}

func (q *AccountBalanceQuery) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewQueryNoPaymentPreCheckStatusError(int32(status))
}

func (q *AccountBalanceQuery) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }
