package ledgersdk

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/resolver"
	"google.golang.org/grpc/resolver/manual"

	"github.com/ledgerkit/ledger-sdk-go/internal/dialer"
	"github.com/ledgerkit/ledger-sdk-go/internal/services"
)

// newMirrorAddressBookFetcher builds an AddressBookFetcher that queries
// one of the configured mirror node addresses for the current node
// address book, the well-known file-content query (file 0.0.102) every
// named-network SDK uses for this purpose.
func newMirrorAddressBookFetcher(mirrorAddresses []string) AddressBookFetcher {
	scheme := fmt.Sprintf("ledgersdk-mirror-%d", resolverSchemeSeq.Add(1))
	builder := manual.NewBuilderWithScheme(scheme)
	addrs := make([]resolver.Address, len(mirrorAddresses))
	for i, a := range mirrorAddresses {
		addrs[i] = resolver.Address{Addr: a}
	}
	builder.InitialState(resolver.State{Addresses: addrs})
	target := fmt.Sprintf("%s:///mirror", scheme)

	var conn *grpc.ClientConn

	return func(ctx context.Context) (map[AccountID][]Endpoint, error) {
		if conn == nil {
			var err error
			conn, err = grpc.NewClient(
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
			if err != nil {
				return nil, err
			}
		}

		wire, err := services.Marshal(&struct {
			FileID services.AccountIDPB `json:"fileID"`
		}{FileID: services.AccountIDPB{ShardNum: 0, RealmNum: 0, Num: 102}})
		if err != nil {
			return nil, err
		}
		raw, err := invokeRaw(ctx, conn, "/proto.FileService/getFileContent", wire)
		if err != nil {
			return nil, err
		}
		var book services.NodeAddressBookPB
		if err := services.Unmarshal(raw, &book); err != nil {
			return nil, err
		}

		out := make(map[AccountID][]Endpoint, len(book.NodeAddress))
		for _, addr := range book.NodeAddress {
			id := accountIDFromPB(addr.NodeAccountID)
			endpoints := make([]Endpoint, 0, len(addr.ServiceEndpoint))
			for _, ep := range addr.ServiceEndpoint {
				endpoints = append(endpoints, Endpoint{IP: ep.IPAddressV4, Port: ep.Port})
			}
			out[id] = endpoints
		}
		return out, nil
	}
}
