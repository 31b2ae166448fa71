package provider

import (
	"io"
	"net"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/factory"
	"github.com/unbreakablehf/xnio/future"
)

// Middleware transforms a Provider by wrapping it. The returned provider
// typically delegates to the original while adding cross-cutting behavior
// (logging, metrics, tracing).
type Middleware func(Provider) Provider

// Chain composes multiple middlewares into one. Middlewares are applied
// in order: the first middleware is outermost.
//
// Chain(a, b, c)(p) is equivalent to a(b(c(p))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Provider) Provider {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// Interceptor runs around one construction call of the given kind. It must
// invoke call exactly once and return its error, possibly after observing it.
type Interceptor func(provider string, kind Kind, call func() error) error

// Intercept returns a Middleware that routes every Create call through ic.
// Name, Awaken and Close pass straight through.
func Intercept(ic Interceptor) Middleware {
	return func(inner Provider) Provider {
		return &intercepted{inner: inner, ic: ic}
	}
}

type intercepted struct {
	inner Provider
	ic    Interceptor
}

func (w *intercepted) Name() string           { return w.inner.Name() }
func (w *intercepted) Awaken(target Wakeable) { w.inner.Awaken(target) }
func (w *intercepted) Close() error           { return w.inner.Close() }
func (w *intercepted) Capabilities() KindSet  { return Capabilities(w.inner) }

// Unwrap returns the wrapped provider.
func (w *intercepted) Unwrap() Provider { return w.inner }

func (w *intercepted) around(kind Kind, call func() error) error {
	return w.ic(w.inner.Name(), kind, call)
}

func (w *intercepted) CreateTCPServer(exec executor.Executor, hf channels.HandlerFactory[channels.TCPChannel], bind ...net.Addr) (f *factory.ConfigurableFactory[channels.BoundServer], err error) {
	err = w.around(KindTCPServer, func() (err error) {
		f, err = w.inner.CreateTCPServer(exec, hf, bind...)
		return err
	})
	return f, err
}

func (w *intercepted) CreateTCPConnector(exec executor.Executor) (f *factory.ConfigurableFactory[channels.CloseableTCPConnector], err error) {
	err = w.around(KindTCPConnector, func() (err error) {
		f, err = w.inner.CreateTCPConnector(exec)
		return err
	})
	return f, err
}

func (w *intercepted) CreateTCPAcceptor(exec executor.Executor) (f *factory.ConfigurableFactory[channels.TCPAcceptor], err error) {
	err = w.around(KindTCPAcceptor, func() (err error) {
		f, err = w.inner.CreateTCPAcceptor(exec)
		return err
	})
	return f, err
}

func (w *intercepted) CreateUDPServer(exec executor.Executor, multicast bool, hf channels.HandlerFactory[channels.UDPChannel], bind ...net.Addr) (f *factory.ConfigurableFactory[channels.BoundServer], err error) {
	err = w.around(KindUDPServer, func() (err error) {
		f, err = w.inner.CreateUDPServer(exec, multicast, hf, bind...)
		return err
	})
	return f, err
}

func (w *intercepted) CreatePipeServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamChannel]) (s channels.ChannelSource[channels.StreamChannel], err error) {
	err = w.around(KindPipeServer, func() (err error) {
		s, err = w.inner.CreatePipeServer(exec, hf)
		return err
	})
	return s, err
}

func (w *intercepted) CreatePipeSourceServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamSinkChannel]) (s channels.ChannelSource[channels.StreamSourceChannel], err error) {
	err = w.around(KindPipeSourceServer, func() (err error) {
		s, err = w.inner.CreatePipeSourceServer(exec, hf)
		return err
	})
	return s, err
}

func (w *intercepted) CreatePipeSinkServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamSourceChannel]) (s channels.ChannelSource[channels.StreamSinkChannel], err error) {
	err = w.around(KindPipeSinkServer, func() (err error) {
		s, err = w.inner.CreatePipeSinkServer(exec, hf)
		return err
	})
	return s, err
}

func (w *intercepted) CreatePipeConnection(exec executor.Executor, left, right channels.Handler[channels.StreamChannel]) (f *future.Future[io.Closer], err error) {
	err = w.around(KindPipeConnection, func() (err error) {
		f, err = w.inner.CreatePipeConnection(exec, left, right)
		return err
	})
	return f, err
}

func (w *intercepted) CreateOneWayPipeConnection(exec executor.Executor, source channels.Handler[channels.StreamSourceChannel], sink channels.Handler[channels.StreamSinkChannel]) (f *future.Future[io.Closer], err error) {
	err = w.around(KindOneWayPipeConnection, func() (err error) {
		f, err = w.inner.CreateOneWayPipeConnection(exec, source, sink)
		return err
	})
	return f, err
}
