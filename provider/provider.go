package provider

import (
	"io"
	"net"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/factory"
	"github.com/unbreakablehf/xnio/future"
)

// Provider is the capability surface of a network I/O implementation.
//
// A nil executor always means "use the provider's default executor" and is
// never an error by itself. Zero bind addresses mean an ephemeral port on
// every local address. Servers, connectors and acceptors come back as
// configurable factories and bind nothing until Create is called.
//
// Implementations embed Unsupported and override what they support. Every
// Create method must be safe for concurrent use.
type Provider interface {
	// Name identifies the implementation.
	Name() string

	// CreateTCPServer returns a factory for a TCP server bound to bind.
	CreateTCPServer(exec executor.Executor, hf channels.HandlerFactory[channels.TCPChannel], bind ...net.Addr) (*factory.ConfigurableFactory[channels.BoundServer], error)
	// CreateTCPConnector returns a factory for an outbound TCP connector.
	CreateTCPConnector(exec executor.Executor) (*factory.ConfigurableFactory[channels.CloseableTCPConnector], error)
	// CreateTCPAcceptor returns a factory for a single-connection TCP acceptor.
	CreateTCPAcceptor(exec executor.Executor) (*factory.ConfigurableFactory[channels.TCPAcceptor], error)
	// CreateUDPServer returns a factory for a UDP server. multicast is a
	// request for a multicast-capable server; providers that cannot honour
	// it fail instead of degrading.
	CreateUDPServer(exec executor.Executor, multicast bool, hf channels.HandlerFactory[channels.UDPChannel], bind ...net.Addr) (*factory.ConfigurableFactory[channels.BoundServer], error)

	// CreatePipeServer returns a source of bidirectional in-process pipes
	// whose server ends are handled by hf.
	CreatePipeServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamChannel]) (channels.ChannelSource[channels.StreamChannel], error)
	// CreatePipeSourceServer returns a source of one-way pipes where data
	// flows from the server end to the client.
	CreatePipeSourceServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamSinkChannel]) (channels.ChannelSource[channels.StreamSourceChannel], error)
	// CreatePipeSinkServer returns a source of one-way pipes where data
	// flows from the client to the server end.
	CreatePipeSinkServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamSourceChannel]) (channels.ChannelSource[channels.StreamSinkChannel], error)

	// CreatePipeConnection connects two handlers with one bidirectional pipe.
	CreatePipeConnection(exec executor.Executor, left, right channels.Handler[channels.StreamChannel]) (*future.Future[io.Closer], error)
	// CreateOneWayPipeConnection connects a source and a sink handler with
	// one unidirectional pipe.
	CreateOneWayPipeConnection(exec executor.Executor, source channels.Handler[channels.StreamSourceChannel], sink channels.Handler[channels.StreamSinkChannel]) (*future.Future[io.Closer], error)

	// Awaken asks the provider to wake any blocking operation it manages on
	// behalf of target. It is advisory and may do nothing.
	Awaken(target Wakeable)

	// Close releases everything the provider owns. Calling it more than
	// once has no additional effect.
	Close() error
}

// Wakeable is a unit of blocking work that can be nudged by Awaken.
type Wakeable interface {
	Wake()
}

// CapabilityReporter is implemented by providers that advertise their
// supported kinds up front.
type CapabilityReporter interface {
	Capabilities() KindSet
}

// Capabilities returns the kinds p advertises. Providers that do not
// implement CapabilityReporter report the empty set, which means "unknown",
// not "nothing".
func Capabilities(p Provider) KindSet {
	if r, ok := p.(CapabilityReporter); ok {
		return r.Capabilities()
	}
	return 0
}

// Supports reports whether p advertises k.
func Supports(p Provider, k Kind) bool {
	return Capabilities(p).Has(k)
}
