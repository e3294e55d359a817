package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

type transactionGetReceiptQueryPB struct {
	TransactionID services.TransactionIDPB `json:"transactionID"`
}

// TransactionReceipt is the typed result of a successful
// TransactionReceiptQuery.
type TransactionReceipt struct {
	Status              Status
	AccountID           *AccountID
	TopicSequenceNumber uint64
}

// TransactionReceiptQuery polls for a transaction's receipt (component
// G, the Receipt/Record Poller): a free query whose ShouldRetry reports
// true for as long as the receipt is not yet visible or the consensus
// node reports it is still processing, letting the execution engine's
// ordinary backoff loop double as the poll loop.
type TransactionReceiptQuery struct {
	Query

	transactionID  TransactionID
	validateStatus bool
}

var _ Request = (*TransactionReceiptQuery)(nil)

func NewTransactionReceiptQuery() *TransactionReceiptQuery {
	return &TransactionReceiptQuery{validateStatus: true}
}

func (q *TransactionReceiptQuery) SetTransactionID(id TransactionID) *TransactionReceiptQuery {
	q.transactionID = id
	return q
}

// SetValidateStatus controls whether a non-Success receipt status is
// surfaced as a ReceiptStatus error from ParseResponse (true by
// default). Set false to inspect a failed receipt's other fields
// instead of erroring.
func (q *TransactionReceiptQuery) SetValidateStatus(validate bool) *TransactionReceiptQuery {
	q.validateStatus = validate
	return q
}

func (q *TransactionReceiptQuery) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
	wire, err := services.Marshal(&transactionGetReceiptQueryPB{
		TransactionID: transactionIDToPB(q.transactionID, q.transactionID.HasNonce()),
	})
	if err != nil {
		return BuildResult{}, NewFromProtobufError("failed to encode receipt query", err)
	}
	return BuildResult{Wire: wire}, nil
}

func (q *TransactionReceiptQuery) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	raw, err := invokeRaw(ctx, channel, "/proto.CryptoService/getTransactionReceipts", wire)
	if err != nil {
		return Reply{}, err
	}
	var resp services.TransactionGetReceiptResponsePB
	if err := services.Unmarshal(raw, &resp); err != nil {
		return Reply{}, NewFromProtobufError("failed to decode receipt response", err)
	}
	return Reply{PrecheckStatus: Status(resp.PrecheckCode), Raw: raw}, nil
}

// ShouldRetryPrecheck reports true for the two transient precheck
// statuses specific to receipt polling, ReceiptNotFound and
// RecordNotFound: the node hasn't yet recorded the submission at all.
func (q *TransactionReceiptQuery) ShouldRetryPrecheck(status Status) bool {
	return status == StatusReceiptNotFound || status == StatusRecordNotFound
}

// ShouldRetry implements the poll loop: a successfully-returned receipt
// whose own status is non-terminal (still pending) is treated as "not
// done yet", driving another engine attempt via its ordinary backoff.
func (q *TransactionReceiptQuery) ShouldRetry(reply Reply) bool {
	var resp services.TransactionGetReceiptResponsePB
	if err := services.Unmarshal(reply.Raw, &resp); err != nil {
		return false
	}
	return !IsTerminalReceiptStatus(Status(resp.Receipt.Status))
}

func (q *TransactionReceiptQuery) ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error) {
	var resp services.TransactionGetReceiptResponsePB
	if err := services.Unmarshal(reply.Raw, &resp); err != nil {
		return nil, NewFromProtobufError("failed to decode receipt response", err)
	}
	status := Status(resp.Receipt.Status)
	if q.validateStatus && status != StatusSuccess {
		return nil, NewReceiptStatusError(int32(status), q.transactionID)
	}
	receipt := TransactionReceipt{Status: status, TopicSequenceNumber: resp.Receipt.TopicSequenceNumber}
	if resp.Receipt.AccountID != nil {
		id := accountIDFromPB(*resp.Receipt.AccountID)
		receipt.AccountID = &id
	}
	return receipt, nil
}

func (q *TransactionReceiptQuery) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionNoIDPreCheckStatusError(int32(status))
}

func (q *TransactionReceiptQuery) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }

// waitForReceipt polls until txID reaches a terminal receipt status, for
// use as a ChunkedRequest's ReceiptWaiter.
func waitForReceipt(engine *Engine) ReceiptWaiter {
	return func(ctx context.Context, txID TransactionID) error {
		_, err := engine.Execute(ctx, NewTransactionReceiptQuery().SetTransactionID(txID))
		return err
	}
}
