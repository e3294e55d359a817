// Package inproc adapts github.com/joeycumines/go-inprocgrpc's
// event-loop-driven Channel into a fake consensus-node transport for
// unit tests: a registry of raw byte-in/byte-out handlers keyed by gRPC
// method name, with no TCP listener involved.
//
// Grounded on inprocgrpc's own RegisterStreamHandler path (Channel.go,
// stream.go): this module's requests move opaque, already-encoded wire
// bytes (internal/rawcodec), not proto.Message values, so tests register
// handlers at that same low level rather than through the usual
// proto-message-based Channel.RegisterService path.
package inproc

import (
	"context"
	"fmt"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-inprocgrpc"
)

// Handler answers one RPC by method name, given that attempt's wire
// bytes; returning an error fails the call at the transport level (as
// opposed to a non-OK precheck status, which a Handler reports by
// returning success with a reply whose precheck field is non-zero).
type Handler func(ctx context.Context, wire []byte) ([]byte, error)

// Channel is a fake transport: every dialed "node" in a test typically
// gets its own Channel, so per-node failure injection and independent
// method tables are straightforward.
type Channel struct {
	ch   *inprocgrpc.Channel
	loop eventloop.Loop

	cancel context.CancelFunc
	done   chan struct{}
}

// New starts a fresh event loop and wraps it in an inprocgrpc.Channel
// configured with a pass-through byte cloner (no proto.Message
// assumption, matching internal/rawcodec's wire representation).
func New() (*Channel, error) {
	loop, err := eventloop.New()
	if err != nil {
		return nil, fmt.Errorf("inproc: failed to start event loop: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	ch := inprocgrpc.NewChannel(
		inprocgrpc.WithLoop(loop),
		inprocgrpc.WithCloner(byteCloner{}),
	)

	return &Channel{ch: ch, loop: loop, cancel: cancel, done: done}, nil
}

// Handle registers handler for method (e.g.
// "/proto.CryptoService/cryptoTransfer"); subsequent Invoke calls against
// method on this channel's ClientConnInterface are answered by it.
func (c *Channel) Handle(method string, handler Handler) {
	c.ch.RegisterStreamHandler(method, func(ctx context.Context, stream *inprocgrpc.RPCStream) {
		stream.Recv().Recv(func(msg any, err error) {
			if err != nil {
				stream.Finish(err)
				return
			}
			wire, _ := msg.([]byte)
			reply, herr := handler(ctx, wire)
			if herr != nil {
				stream.Finish(herr)
				return
			}
			if sendErr := stream.Send().Send(reply); sendErr != nil {
				stream.Finish(sendErr)
				return
			}
			stream.Finish(nil)
		})
	})
}

// Conn returns the grpc.ClientConnInterface value to pass as a Request's
// channel argument in tests.
func (c *Channel) Conn() *inprocgrpc.Channel { return c.ch }

// Close stops the channel's event loop.
func (c *Channel) Close() {
	c.cancel()
	<-c.done
}

// byteCloner is a Cloner for this module's []byte/*[]byte wire values,
// since the default inprocgrpc.ProtoCloner assumes proto.Message.
type byteCloner struct{}

func (byteCloner) Clone(in any) (any, error) {
	b, ok := in.([]byte)
	if !ok {
		return nil, fmt.Errorf("inproc: byteCloner.Clone: expected []byte, got %T", in)
	}
	return append([]byte(nil), b...), nil
}

func (byteCloner) Copy(out, in any) error {
	outPtr, ok := out.(*[]byte)
	if !ok {
		return fmt.Errorf("inproc: byteCloner.Copy: expected *[]byte, got %T", out)
	}
	inBytes, ok := in.([]byte)
	if !ok {
		return fmt.Errorf("inproc: byteCloner.Copy: expected []byte, got %T", in)
	}
	*outPtr = append((*outPtr)[:0], inBytes...)
	return nil
}
