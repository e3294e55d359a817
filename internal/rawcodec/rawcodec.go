// Package rawcodec registers a pass-through gRPC codec used to invoke
// consensus/mirror node RPCs with already-encoded wire bytes (built by a
// Request's BuildRequest hook) instead of a proto.Message value — the
// engine treats every request kind opaquely, so the channel only ever
// needs to move bytes in and out. This mirrors the byte-forwarding codec
// idiom used by transparent gRPC proxies in the pack (grpc-proxy), here
// applied to a typed client instead of a proxy.
package rawcodec

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the content-subtype this codec registers under; pass
// grpc.CallContentSubtype(Name) on every Invoke call that uses it.
const Name = "ledgersdk-raw"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	default:
		return nil, fmt.Errorf("rawcodec: cannot marshal %T, expected []byte", v)
	}
}

func (codec) Unmarshal(data []byte, v any) error {
	switch b := v.(type) {
	case *[]byte:
		*b = append((*b)[:0], data...)
		return nil
	default:
		return fmt.Errorf("rawcodec: cannot unmarshal into %T, expected *[]byte", v)
	}
}

func (codec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(codec{})
}
