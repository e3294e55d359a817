package ledgersdk

import (
	"context"
	"time"

	"google.golang.org/grpc"

	_ "github.com/ledgerkit/ledger-sdk-go/internal/rawcodec"
	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// invokeRaw performs one unary gRPC call against method, passing wire
// through unmodified (§6: "length-delimited protobuf over HTTP/2, one
// logical service call per request... The core is protocol-agnostic; it
// invokes the capability's execute(channel, bytes) hook.").
func invokeRaw(ctx context.Context, channel grpc.ClientConnInterface, method string, wire []byte) ([]byte, error) {
	var reply []byte
	if err := channel.Invoke(ctx, method, wire, &reply, grpc.CallContentSubtype("ledgersdk-raw")); err != nil {
		return nil, err
	}
	return reply, nil
}

// invokeCryptoGetAccountBalance performs the method used both by the real
// AccountBalanceQuery and by the internal ping probe (a balance query
// against the node's own account is the cheapest available
// "is this node alive" check).
func invokeCryptoGetAccountBalance(ctx context.Context, channel grpc.ClientConnInterface, wire []byte) (Reply, error) {
	raw, err := invokeRaw(ctx, channel, "/proto.CryptoService/cryptoGetBalance", wire)
	if err != nil {
		return Reply{}, err
	}
	var resp services.CryptoGetAccountBalanceResponsePB
	if err := services.Unmarshal(raw, &resp); err != nil {
		return Reply{}, NewFromProtobufError("failed to decode balance response", err)
	}
	return Reply{PrecheckStatus: Status(resp.PrecheckCode), Raw: raw}, nil
}

// invokeTransactionSubmit performs the common "submit a signed
// transaction" shape shared by every concrete transaction kind: a unary
// call returning only an immediate precheck status (the actual terminal
// result is obtained later via the Receipt/Record Poller).
func invokeTransactionSubmit(ctx context.Context, channel grpc.ClientConnInterface, method string, wire []byte) (Reply, error) {
	raw, err := invokeRaw(ctx, channel, method, wire)
	if err != nil {
		return Reply{}, err
	}
	var resp services.TransactionResponsePB
	if err := services.Unmarshal(raw, &resp); err != nil {
		return Reply{}, NewFromProtobufError("failed to decode transaction response", err)
	}
	return Reply{PrecheckStatus: Status(resp.NodeTransactionPrecheckCode), Raw: raw}, nil
}

func accountIDToPB(id AccountID) services.AccountIDPB {
	return services.AccountIDPB{ShardNum: id.Shard, RealmNum: id.Realm, Num: id.Num}
}

func accountIDFromPB(pb services.AccountIDPB) AccountID {
	return AccountID{Shard: pb.ShardNum, Realm: pb.RealmNum, Num: pb.Num}
}

func transactionIDToPB(id TransactionID, hasNonce bool) services.TransactionIDPB {
	pb := services.TransactionIDPB{
		AccountID:  accountIDToPB(id.AccountID),
		ValidStart: services.TimestampPB{Seconds: id.ValidStart.Unix(), Nanos: int32(id.ValidStart.Nanosecond())},
		Scheduled:  id.Scheduled,
	}
	if hasNonce {
		pb.Nonce = id.Nonce
	}
	return pb
}

func transactionIDFromPB(pb services.TransactionIDPB) TransactionID {
	id := TransactionID{
		AccountID:  accountIDFromPB(pb.AccountID),
		ValidStart: unixNano(pb.ValidStart.Seconds, pb.ValidStart.Nanos),
		Scheduled:  pb.Scheduled,
	}
	if pb.Nonce != 0 {
		id = id.WithNonce(pb.Nonce)
	}
	return id
}

func unixNano(seconds int64, nanos int32) time.Time {
	return time.Unix(seconds, int64(nanos)).UTC()
}
