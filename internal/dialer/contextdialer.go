// Package dialer provides context-respecting TCP dial helpers used to
// build the keep-alive/connect-timeout gRPC dial options for a node's
// lazily constructed channel (spec §4.A: "10s TCP keep-alive, 10s connect
// timeout, balanced round-robin across the entry's endpoints").
//
// Adapted from the grpc-proxy ContextDialer helper in the pack: the
// cancellation/timeout wrapping is generic, so it is kept close to the
// original shape and retargeted at node dialing instead of proxy backend
// dialing.
package dialer

import (
	"context"
	"net"
	"time"
)

// ContextDialer is for use with grpc.WithContextDialer.
type ContextDialer func(ctx context.Context, addr string) (conn net.Conn, err error)

// New builds a ContextDialer that dials TCP with the given keep-alive
// period and wraps every dial with connectTimeout.
func New(keepAlive, connectTimeout time.Duration) ContextDialer {
	nd := net.Dialer{KeepAlive: keepAlive}
	base := ContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
		return nd.DialContext(ctx, "tcp", addr)
	})
	return WithTimeout(connectTimeout, WithCancel(context.Background(), base))
}

// WithCancel wraps a dialer function to ensure that it respects the
// provided context, in addition to the context passed to each dial.
func WithCancel(ctx context.Context, d ContextDialer) ContextDialer {
	if ctx == nil {
		panic("ledgersdk/internal/dialer: WithCancel called with nil context")
	}
	if d == nil {
		panic("ledgersdk/internal/dialer: WithCancel called with nil dialer")
	}
	return func(ctx2 context.Context, addr string) (net.Conn, error) {
		if ctx2.Err() != nil {
			return nil, ctx2.Err()
		}
		if ctx.Err() != nil {
			return nil, context.Canceled
		}
		ctx2, cancel := context.WithCancel(ctx2)
		defer cancel()
		defer context.AfterFunc(ctx, cancel)() // stop on exit
		return d(ctx2, addr)
	}
}

// WithTimeout wraps a dialer function to ensure that it respects the
// provided timeout, applied fresh on every dial.
func WithTimeout(timeout time.Duration, d ContextDialer) ContextDialer {
	return func(ctx context.Context, addr string) (net.Conn, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return d(ctx, addr)
	}
}
