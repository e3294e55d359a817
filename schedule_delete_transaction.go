package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

type scheduleDeletePayloadPB struct {
	ScheduleID services.AccountIDPB `json:"scheduleID"`
}

// ScheduleDeleteTransaction cancels a pending scheduled transaction
// before it executes. Supplemented from original_source/ alongside
// ScheduleSignTransaction.
type ScheduleDeleteTransaction struct {
	Transaction

	scheduleID ScheduleID
}

var _ Request = (*ScheduleDeleteTransaction)(nil)

func NewScheduleDeleteTransaction() *ScheduleDeleteTransaction {
	return &ScheduleDeleteTransaction{}
}

func (t *ScheduleDeleteTransaction) SetScheduleID(id ScheduleID) *ScheduleDeleteTransaction {
	t.mustNotBeFrozen()
	t.scheduleID = id
	return t
}

func (t *ScheduleDeleteTransaction) payload() []byte {
	data, _ := services.Marshal(&scheduleDeletePayloadPB{ScheduleID: accountIDToPB(t.scheduleID)})
	return data
}

func (t *ScheduleDeleteTransaction) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
	if !hasTxID {
		return BuildResult{}, NewNoPayerAccountOrTransactionIDError()
	}
	wire, hash, err := t.buildSignedWire(txID, nodeID, t.payload(), nil)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Wire: wire, Ctx: hash}, nil
}

func (t *ScheduleDeleteTransaction) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeTransactionSubmit(ctx, channel, "/proto.ScheduleService/deleteSchedule", wire)
}

func (t *ScheduleDeleteTransaction) ShouldRetryPrecheck(Status) bool { return false }

func (t *ScheduleDeleteTransaction) ShouldRetry(Reply) bool { return false }

func (t *ScheduleDeleteTransaction) ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error) {
	hash, _ := buildCtx.([]byte)
	return TransactionResponse{NodeID: nodeID, TransactionID: txID, Hash: hash}, nil
}

func (t *ScheduleDeleteTransaction) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionPreCheckStatusError(int32(status), txID)
}

func (t *ScheduleDeleteTransaction) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }
