package nio

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"sync"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/future"
	"github.com/unbreakablehf/xnio/observability"
	"github.com/unbreakablehf/xnio/provider"
)

// CreatePipeServer implements provider.Provider. Every Open creates a new
// net.Pipe: the server end goes to a handler from hf, the client end to the
// handler passed to Open.
func (p *Provider) CreatePipeServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamChannel]) (channels.ChannelSource[channels.StreamChannel], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return &pipeServer[channels.StreamChannel]{
		p:    p,
		exec: exec,
		connect: func(exec executor.Executor, client channels.Handler[channels.StreamChannel]) (channels.StreamChannel, error) {
			_, end, err := p.pipe(exec, provider.KindPipeServer, handlerFrom(hf), client)
			if err != nil {
				return nil, err
			}
			return end, nil
		},
	}, nil
}

// CreatePipeSourceServer implements provider.Provider. Data flows from the
// server end, handled by hf, to the client end returned by Open.
func (p *Provider) CreatePipeSourceServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamSinkChannel]) (channels.ChannelSource[channels.StreamSourceChannel], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return &pipeServer[channels.StreamSourceChannel]{
		p:    p,
		exec: exec,
		connect: func(exec executor.Executor, client channels.Handler[channels.StreamSourceChannel]) (channels.StreamSourceChannel, error) {
			source, _, err := p.oneWayPipe(exec, provider.KindPipeSourceServer, client, handlerFrom(hf))
			if err != nil {
				return nil, err
			}
			return source, nil
		},
	}, nil
}

// CreatePipeSinkServer implements provider.Provider. Data flows from the
// client end returned by Open to the server end, handled by hf.
func (p *Provider) CreatePipeSinkServer(exec executor.Executor, hf channels.HandlerFactory[channels.StreamSourceChannel]) (channels.ChannelSource[channels.StreamSinkChannel], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return &pipeServer[channels.StreamSinkChannel]{
		p:    p,
		exec: exec,
		connect: func(exec executor.Executor, client channels.Handler[channels.StreamSinkChannel]) (channels.StreamSinkChannel, error) {
			_, sink, err := p.oneWayPipe(exec, provider.KindPipeSinkServer, handlerFrom(hf), client)
			if err != nil {
				return nil, err
			}
			return sink, nil
		},
	}, nil
}

// pipeServer is a ChannelSource whose Open yields the client end C of a new
// pipe while the server end goes to the server's handler factory. It holds
// no per-connection state.
type pipeServer[C any] struct {
	p       *Provider
	exec    executor.Executor
	connect func(exec executor.Executor, client channels.Handler[C]) (C, error)
}

// Open implements channels.ChannelSource. Pipes connect immediately, so the
// returned future is already done.
func (s *pipeServer[C]) Open(ctx context.Context, hf channels.HandlerFactory[C]) (*future.Future[C], error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled("open").WithCause(err)
	}
	if err := s.p.checkOpen(); err != nil {
		return nil, err
	}
	exec, err := s.p.executor(s.exec)
	if err != nil {
		return nil, err
	}
	ch, err := s.connect(exec, handlerFrom(hf))
	if err != nil {
		return future.Failed[C](err), nil
	}
	return future.Completed(ch), nil
}

// CreatePipeConnection implements provider.Provider.
func (p *Provider) CreatePipeConnection(exec executor.Executor, left, right channels.Handler[channels.StreamChannel]) (*future.Future[io.Closer], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	exec, err := p.executor(exec)
	if err != nil {
		return nil, err
	}
	l, r, err := p.pipe(exec, provider.KindPipeConnection, orNoop(left), orNoop(right))
	if err != nil {
		return future.Failed[io.Closer](err), nil
	}
	return future.Completed[io.Closer](&pipePair{a: l, b: r}), nil
}

// CreateOneWayPipeConnection implements provider.Provider. The source
// handler gets the reading end and the sink handler the writing end.
func (p *Provider) CreateOneWayPipeConnection(exec executor.Executor, source channels.Handler[channels.StreamSourceChannel], sink channels.Handler[channels.StreamSinkChannel]) (*future.Future[io.Closer], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	exec, err := p.executor(exec)
	if err != nil {
		return nil, err
	}
	r, w, err := p.oneWayPipe(exec, provider.KindOneWayPipeConnection, orNoop(source), orNoop(sink))
	if err != nil {
		return future.Failed[io.Closer](err), nil
	}
	return future.Completed[io.Closer](&pipePair{a: r, b: w}), nil
}

// pipe connects two handlers with a bidirectional net.Pipe. If the second
// end cannot be attached the first is closed again.
func (p *Provider) pipe(exec executor.Executor, kind provider.Kind, a, b channels.Handler[channels.StreamChannel]) (channels.StreamChannel, channels.StreamChannel, error) {
	ca, cb := net.Pipe()
	chA, chB := newPipeChannel(ca), newPipeChannel(cb)
	at := p.pipeAttachment(exec, kind)
	if err := attach[channels.StreamChannel](p, at, chA, chA.lc, a); err != nil {
		_ = cb.Close()
		return nil, nil, err
	}
	if err := attach[channels.StreamChannel](p, at, chB, chB.lc, b); err != nil {
		_ = chA.Close()
		return nil, nil, err
	}
	return chA, chB, nil
}

// oneWayPipe connects a reading and a writing handler with an io.Pipe.
func (p *Provider) oneWayPipe(exec executor.Executor, kind provider.Kind, source channels.Handler[channels.StreamSourceChannel], sink channels.Handler[channels.StreamSinkChannel]) (channels.StreamSourceChannel, channels.StreamSinkChannel, error) {
	r, w := io.Pipe()
	src, snk := newPipeSource(r), newPipeSink(w)
	at := p.pipeAttachment(exec, kind)
	if err := attach[channels.StreamSourceChannel](p, at, src, src.lc, source); err != nil {
		_ = w.Close()
		return nil, nil, err
	}
	if err := attach[channels.StreamSinkChannel](p, at, snk, snk.lc, sink); err != nil {
		_ = src.Close()
		return nil, nil, err
	}
	return src, snk, nil
}

func (p *Provider) pipeAttachment(exec executor.Executor, kind provider.Kind) attachment {
	return attachment{
		kind:  kind.String(),
		span:  observability.SpanPipeOpen,
		owner: p.resources,
		exec:  exec,
	}
}

// pipePair closes both ends of one pipe connection.
type pipePair struct {
	a, b io.Closer
	once sync.Once
	err  error
}

func (pp *pipePair) Close() error {
	pp.once.Do(func() {
		pp.err = stderrors.Join(pp.a.Close(), pp.b.Close())
	})
	return pp.err
}
