package provider

import (
	"io"
	"net"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/factory"
	"github.com/unbreakablehf/xnio/future"
)

// Unsupported is the embeddable base of a Provider. Every Create method
// fails with OPERATION_UNSUPPORTED labelled with the requested kind, and
// Awaken does nothing. It deliberately has no Close, so an embedding type
// must define what closing releases.
//
//	type myProvider struct {
//	    provider.Unsupported
//	}
//
//	func (p *myProvider) Name() string { return "my" }
//	func (p *myProvider) Close() error { return nil }
type Unsupported struct{}

func (Unsupported) CreateTCPServer(executor.Executor, channels.HandlerFactory[channels.TCPChannel], ...net.Addr) (*factory.ConfigurableFactory[channels.BoundServer], error) {
	return nil, unsupported(KindTCPServer)
}

func (Unsupported) CreateTCPConnector(executor.Executor) (*factory.ConfigurableFactory[channels.CloseableTCPConnector], error) {
	return nil, unsupported(KindTCPConnector)
}

func (Unsupported) CreateTCPAcceptor(executor.Executor) (*factory.ConfigurableFactory[channels.TCPAcceptor], error) {
	return nil, unsupported(KindTCPAcceptor)
}

func (Unsupported) CreateUDPServer(executor.Executor, bool, channels.HandlerFactory[channels.UDPChannel], ...net.Addr) (*factory.ConfigurableFactory[channels.BoundServer], error) {
	return nil, unsupported(KindUDPServer)
}

func (Unsupported) CreatePipeServer(executor.Executor, channels.HandlerFactory[channels.StreamChannel]) (channels.ChannelSource[channels.StreamChannel], error) {
	return nil, unsupported(KindPipeServer)
}

func (Unsupported) CreatePipeSourceServer(executor.Executor, channels.HandlerFactory[channels.StreamSinkChannel]) (channels.ChannelSource[channels.StreamSourceChannel], error) {
	return nil, unsupported(KindPipeSourceServer)
}

func (Unsupported) CreatePipeSinkServer(executor.Executor, channels.HandlerFactory[channels.StreamSourceChannel]) (channels.ChannelSource[channels.StreamSinkChannel], error) {
	return nil, unsupported(KindPipeSinkServer)
}

func (Unsupported) CreatePipeConnection(executor.Executor, channels.Handler[channels.StreamChannel], channels.Handler[channels.StreamChannel]) (*future.Future[io.Closer], error) {
	return nil, unsupported(KindPipeConnection)
}

func (Unsupported) CreateOneWayPipeConnection(executor.Executor, channels.Handler[channels.StreamSourceChannel], channels.Handler[channels.StreamSinkChannel]) (*future.Future[io.Closer], error) {
	return nil, unsupported(KindOneWayPipeConnection)
}

func (Unsupported) Awaken(Wakeable) {}

func unsupported(k Kind) error {
	return errors.OperationUnsupported(k.String()).WithDetail("capability", uint16(k))
}
