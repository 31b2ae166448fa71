package channels

import (
	"io"
	"net"
	"time"
)

// Channel is any I/O endpoint handed to a handler.
type Channel interface {
	io.Closer
	// IsOpen reports whether Close has not been called yet.
	IsOpen() bool
}

// StreamSourceChannel is a channel that can be read from.
type StreamSourceChannel interface {
	Channel
	io.Reader
}

// StreamSinkChannel is a channel that can be written to.
type StreamSinkChannel interface {
	Channel
	io.Writer
}

// StreamChannel is a bidirectional stream.
type StreamChannel interface {
	StreamSourceChannel
	StreamSinkChannel
}

// TCPChannel is a connected TCP stream.
type TCPChannel interface {
	StreamChannel
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	// CloseWrite shuts down the sending side only.
	CloseWrite() error
	SetDeadline(t time.Time) error
}

// UDPChannel is a bound datagram endpoint.
type UDPChannel interface {
	Channel
	LocalAddr() net.Addr
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	// JoinGroup joins a multicast group. Channels created without the
	// multicast flag fail with OPERATION_UNSUPPORTED.
	JoinGroup(group net.IP, iface *net.Interface) error
	// LeaveGroup leaves a multicast group joined with JoinGroup.
	LeaveGroup(group net.IP, iface *net.Interface) error
	// Multicast reports whether the channel was created multicast-capable.
	Multicast() bool
}
