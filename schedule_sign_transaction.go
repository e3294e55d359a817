package ledgersdk

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

type scheduleSignPayloadPB struct {
	ScheduleID services.AccountIDPB `json:"scheduleID"`
}

// ScheduleSignTransaction adds the operator's (or an explicitly added
// signer's) signature to a previously created scheduled transaction.
// Supplemented from original_source/'s scheduled-transaction support,
// dropped by the distillation but straightforward to carry here since it
// reuses the same Request/Transaction plumbing as any other transaction
// kind — it just targets a different entity and carries no payload
// beyond the schedule ID.
type ScheduleSignTransaction struct {
	Transaction

	scheduleID ScheduleID
}

var _ Request = (*ScheduleSignTransaction)(nil)

func NewScheduleSignTransaction() *ScheduleSignTransaction {
	return &ScheduleSignTransaction{}
}

func (t *ScheduleSignTransaction) SetScheduleID(id ScheduleID) *ScheduleSignTransaction {
	t.mustNotBeFrozen()
	t.scheduleID = id
	return t
}

func (t *ScheduleSignTransaction) payload() []byte {
	data, _ := services.Marshal(&scheduleSignPayloadPB{ScheduleID: accountIDToPB(t.scheduleID)})
	return data
}

func (t *ScheduleSignTransaction) BuildRequest(txID TransactionID, hasTxID bool, nodeID AccountID) (BuildResult, error) {
	if !hasTxID {
		return BuildResult{}, NewNoPayerAccountOrTransactionIDError()
	}
	wire, hash, err := t.buildSignedWire(txID, nodeID, t.payload(), nil)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Wire: wire, Ctx: hash}, nil
}

func (t *ScheduleSignTransaction) Execute(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	return invokeTransactionSubmit(ctx, channel, "/proto.ScheduleService/signSchedule", wire)
}

func (t *ScheduleSignTransaction) ShouldRetryPrecheck(Status) bool { return false }

func (t *ScheduleSignTransaction) ShouldRetry(Reply) bool { return false }

func (t *ScheduleSignTransaction) ParseResponse(reply Reply, buildCtx any, nodeID AccountID, txID TransactionID, hasTxID bool) (any, error) {
	hash, _ := buildCtx.([]byte)
	return TransactionResponse{NodeID: nodeID, TransactionID: txID, Hash: hash}, nil
}

func (t *ScheduleSignTransaction) MapPrecheckError(status Status, txID TransactionID, hasTxID bool) error {
	return NewTransactionPreCheckStatusError(int32(status), txID)
}

func (t *ScheduleSignTransaction) PrecheckStatusOf(reply Reply) Status { return reply.PrecheckStatus }
