package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

type transactionGetRecordQueryPB struct {
	TransactionID services.TransactionIDPB `json:"transactionID"`
}

// TransactionRecord is the typed result of a successful
// TransactionRecordQuery: the detailed, payable summary of a completed
// transaction.
type TransactionRecord struct {
	Receipt         TransactionReceipt
	TransactionHash []byte
	TransactionID   TransactionID
	Memo            string
	TransactionFee  uint64
}

// TransactionRecordQuery polls for a transaction's detailed record, the
// paid counterpart to TransactionReceiptQuery (component G).
type TransactionRecordQuery struct {
	Query

	transactionID TransactionID
}

var _ Request = (*TransactionRecordQuery)(nil)

func NewTransactionRecordQuery() *TransactionRecordQuery {
	return &TransactionRecordQuery{}
}

func (q *TransactionRecordQuery) SetTransactionID(id TransactionID) *TransactionRecordQuery {
	q.transactionID = id
	return q
}

func (q *TransactionRecordQuery) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
	paymentWire, err := q.buildPayment(nil, nodeID)
	if err != nil {
		return BuildResult{}, err
	}
	type wireQuery struct {
		TransactionID services.TransactionIDPB `json:"transactionID"`
		Payment       []byte                   `json:"payment,omitempty"`
	}
	wire, err := services.Marshal(&wireQuery{
		TransactionID: transactionIDToPB(q.transactionID, q.transactionID.HasNonce()),
		Payment:       paymentWire,
	})
	if err != nil {
		return BuildResult{}, NewFromProtobufError("failed to encode record query", err)
	}
	return BuildResult{Wire: wire}, nil
}

func (q *TransactionRecordQuery) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	raw, err := invokeRaw(ctx, channel, "/proto.CryptoService/getTxRecordByTxID", wire)
	if err != nil {
		return Reply{}, err
	}
	var resp services.TransactionGetRecordResponsePB
	if err := services.Unmarshal(raw, &resp); err != nil {
		return Reply{}, NewFromProtobufError("failed to decode record response", err)
	}
	return Reply{PrecheckStatus: Status(resp.PrecheckCode), Raw: raw}, nil
}

func (q *TransactionRecordQuery) ShouldRetryPrecheck(status Status) bool {
	return status == StatusRecordNotFound
}

func (q *TransactionRecordQuery) ShouldRetry(reply Reply) bool {
	var resp services.TransactionGetRecordResponsePB
	if err := services.Unmarshal(reply.Raw, &resp); err != nil {
		return false
	}
	return !IsTerminalReceiptStatus(Status(resp.Record.Receipt.Status))
}

func (q *TransactionRecordQuery) ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error) {
	var resp services.TransactionGetRecordResponsePB
	if err := services.Unmarshal(reply.Raw, &resp); err != nil {
		return nil, NewFromProtobufError("failed to decode record response", err)
	}
	status := Status(resp.Record.Receipt.Status)
	if status != StatusSuccess {
		return nil, NewReceiptStatusError(int32(status), q.transactionID)
	}
	return TransactionRecord{
		Receipt:         TransactionReceipt{Status: status, TopicSequenceNumber: resp.Record.Receipt.TopicSequenceNumber},
		TransactionHash: resp.Record.TransactionHash,
		TransactionID:   transactionIDFromPB(resp.Record.TransactionID),
		Memo:            resp.Record.Memo,
		TransactionFee:  resp.Record.TransactionFee,
	}, nil
}

func (q *TransactionRecordQuery) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewQueryNoPaymentPreCheckStatusError(int32(status))
}

func (q *TransactionRecordQuery) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }
