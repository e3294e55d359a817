package ledgersdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledger-sdk-go/internal/inproc"
	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

func TestInvokeCryptoGetAccountBalance_RoundTrip(t *testing.T) {
	ch, err := inproc.New()
	require.NoError(t, err)
	defer ch.Close()

	acct := AccountID{Shard: 0, Realm: 0, Num: 1001}
	ch.Handle("/proto.CryptoService/cryptoGetBalance", func(ctx context.Context, wire []byte) ([]byte, error) {
		var req services.AccountBalanceQueryPB
		if err := services.Unmarshal(wire, &req); err != nil {
			return nil, err
		}
		return services.Marshal(&services.CryptoGetAccountBalanceResponsePB{
			PrecheckCode: int32(StatusOk),
			AccountID:    req.AccountID,
			Balance:      12345,
		})
	})

	q := NewAccountBalanceQuery().SetAccountID(acct)
	build, err := q.BuildRequest(TransactionID{}, false, AccountID{})
	require.NoError(t, err)

	reply, err := q.Execute(context.Background(), ch.Conn(), build.Wire)
	require.NoError(t, err)
	assert.Equal(t, StatusOk, reply.PrecheckStatus)

	result, err := q.ParseResponse(reply, build.Ctx, AccountID{}, TransactionID{}, false)
	require.NoError(t, err)
	bal := result.(AccountBalance)
	assert.Equal(t, acct, bal.AccountID)
	assert.Equal(t, uint64(12345), bal.Balance)
}

func TestPingQuery_Execute_UsesSameRPC(t *testing.T) {
	ch, err := inproc.New()
	require.NoError(t, err)
	defer ch.Close()

	called := false
	ch.Handle("/proto.CryptoService/cryptoGetBalance", func(ctx context.Context, wire []byte) ([]byte, error) {
		called = true
		return services.Marshal(&services.CryptoGetAccountBalanceResponsePB{PrecheckCode: int32(StatusOk)})
	})

	p := &pingQuery{nodeID: AccountID{Shard: 0, Realm: 0, Num: 3}}
	build, err := p.BuildRequest(TransactionID{}, false, p.nodeID)
	require.NoError(t, err)

	reply, err := p.Execute(context.Background(), ch.Conn(), build.Wire)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, StatusOk, reply.PrecheckStatus)
}

func TestInvokeRaw_PropagatesHandlerFailure(t *testing.T) {
	ch, err := inproc.New()
	require.NoError(t, err)
	defer ch.Close()

	ch.Handle("/test.Service/boom", func(ctx context.Context, wire []byte) ([]byte, error) {
		return nil, assert.AnError
	})

	_, err = invokeRaw(context.Background(), ch.Conn(), "/test.Service/boom", []byte("x"))
	require.Error(t, err)
}
