package ledgersdk

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/resolver"
	"google.golang.org/grpc/resolver/manual"

	"github.com/ledgerkit/ledger-sdk-go/internal/dialer"
)

const (
	channelKeepAlive      = 10 * time.Second
	channelConnectTimeout = 10 * time.Second
)

// channelCell is the initialize-once holder for a node's lazily
// constructed channel (spec §3, §5: "Channel cell: initialize-once;
// concurrent first uses are deduplicated"). conn is typed as the narrow
// grpc.ClientConnInterface, rather than the concrete *grpc.ClientConn
// dialChannel produces, so tests can pre-populate a cell with a fake
// transport (internal/inproc) via newChannelCellWithConn instead of
// dialing a real connection.
type channelCell struct {
	once sync.Once
	conn grpc.ClientConnInterface
	err  error

	accountID AccountID
	endpoints []Endpoint
}

func newChannelCell(accountID AccountID, endpoints []Endpoint) *channelCell {
	return &channelCell{accountID: accountID, endpoints: endpoints}
}

// newChannelCellWithConn builds a channelCell pre-populated with conn,
// skipping dialChannel entirely.
func newChannelCellWithConn(accountID AccountID, conn grpc.ClientConnInterface) *channelCell {
	c := &channelCell{accountID: accountID, conn: conn}
	c.once.Do(func() {})
	return c
}

// get returns the node's channel, constructing it on first call. Every
// concurrent first call blocks on the same construction (sync.Once), so
// exactly one connection is dialed per channelCell.
func (c *channelCell) get() (grpc.ClientConnInterface, error) {
	c.once.Do(func() {
		c.conn, c.err = dialChannel(c.accountID, c.endpoints)
	})
	return c.conn, c.err
}

// closeIfDialed closes the underlying connection if this cell's first use
// has already happened and the connection is closeable; a never-dialed
// cell, or one pre-populated with a non-closing fake transport, has
// nothing to close.
func (c *channelCell) closeIfDialed() error {
	if c.conn == nil {
		return nil
	}
	if closer, ok := c.conn.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// resolverSchemeSeq gives every dialed node's manual resolver a unique
// scheme, so concurrently-dialed nodes (and successive Client instances in
// the same process, e.g. in tests) never collide in grpc's global
// resolver registry.
var resolverSchemeSeq atomic.Uint64

// dialChannel constructs a load-balanced round-robin channel across a
// node's endpoint set, per spec §4.A: "10s TCP keep-alive, 10s connect
// timeout, balanced round-robin across the entry's endpoints."
func dialChannel(accountID AccountID, endpoints []Endpoint) (*grpc.ClientConn, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("ledgersdk: node %s has no endpoints", accountID)
	}

	addrs := make([]resolver.Address, len(endpoints))
	for i, ep := range endpoints {
		addrs[i] = resolver.Address{Addr: ep.String()}
	}

	scheme := fmt.Sprintf("ledgersdk-node-%d", resolverSchemeSeq.Add(1))
	builder := manual.NewBuilderWithScheme(scheme)
	builder.InitialState(resolver.State{Addresses: addrs})
	target := fmt.Sprintf("%s:///%s", scheme, accountID)

	return grpc.NewClient(
		target,
		grpc.WithResolvers(builder),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultServiceConfig(`{"loadBalancingConfig":[{"round_robin":{}}]}`),
		grpc.WithContextDialer(dialer.New(channelKeepAlive, channelConnectTimeout)),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                channelKeepAlive,
			Timeout:             channelConnectTimeout,
			PermitWithoutStream: true,
		}),
	)
}
