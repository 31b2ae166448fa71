package channels

import (
	"context"
	"io"
	"net"

	"github.com/unbreakablehf/xnio/future"
)

// ChannelSource opens new client-side channels to a pipe server. Every
// Open produces an independent connection; the source itself keeps no
// per-connection state and may be used concurrently.
type ChannelSource[C any] interface {
	Open(ctx context.Context, hf HandlerFactory[C]) (*future.Future[C], error)
}

// TCPConnector establishes outbound TCP connections.
type TCPConnector interface {
	// ConnectTo dials dest and hands the established channel to h.
	ConnectTo(ctx context.Context, dest net.Addr, h Handler[TCPChannel]) (*future.Future[TCPChannel], error)
	// ConnectFrom is ConnectTo with an explicit local source address.
	ConnectFrom(ctx context.Context, src, dest net.Addr, h Handler[TCPChannel]) (*future.Future[TCPChannel], error)
}

// CloseableTCPConnector is a TCPConnector owning resources released by Close.
type CloseableTCPConnector interface {
	TCPConnector
	io.Closer
}

// TCPAcceptor accepts single inbound TCP connections on demand.
type TCPAcceptor interface {
	// AcceptTo listens on local, accepts exactly one connection, hands it to
	// h and stops listening.
	AcceptTo(ctx context.Context, local net.Addr, h Handler[TCPChannel]) (*future.Future[TCPChannel], error)
	io.Closer
}

// BoundServer is the product of a TCP or UDP server factory.
type BoundServer interface {
	io.Closer
	// Addrs returns the addresses the server actually bound.
	Addrs() []net.Addr
}
