package nio

import (
	"context"
	stderrors "errors"
	"net"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/factory"
	"github.com/unbreakablehf/xnio/future"
	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/observability"
	"github.com/unbreakablehf/xnio/provider"
	"github.com/unbreakablehf/xnio/resilience"
	"github.com/unbreakablehf/xnio/validation"
)

var tcpNetworks = []string{"tcp", "tcp4", "tcp6"}

// acceptBackoff paces a listener that keeps failing, e.g. when the process
// is out of file descriptors.
var acceptBackoff = resilience.RetryConfig{
	InitialBackoff: 5 * time.Millisecond,
	MaxBackoff:     time.Second,
	BackoffFactor:  2,
}

// CreateTCPServer implements provider.Provider. Nothing is bound until the
// returned factory's Create is called.
func (p *Provider) CreateTCPServer(exec executor.Executor, hf channels.HandlerFactory[channels.TCPChannel], bind ...net.Addr) (*factory.ConfigurableFactory[channels.BoundServer], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	v := validation.New().NotNil("handler_factory", hf)
	for _, a := range bind {
		v.Addr("bind", a, tcpNetworks...)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	bind = slices.Clone(bind)
	return factory.New(func(ctx context.Context, opts factory.Options) (channels.BoundServer, error) {
		s, err := p.listenTCP(ctx, exec, hf, bind, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, tcpServerOptions...), nil
}

// tcpServer accepts connections on one or more listeners and hands each to
// a handler from its factory.
type tcpServer struct {
	p         *Provider
	exec      executor.Executor
	hf        channels.HandlerFactory[channels.TCPChannel]
	sock      socketOptions
	listeners []*net.TCPListener
	conns     *closerSet
	bulkhead  *resilience.Bulkhead
	limiter   *resilience.RateLimiter
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	err    error
}

func (p *Provider) listenTCP(ctx context.Context, exec executor.Executor, hf channels.HandlerFactory[channels.TCPChannel], bind []net.Addr, opts factory.Options) (*tcpServer, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	exec, err := p.executor(exec)
	if err != nil {
		return nil, err
	}
	sock, err := p.socketOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(bind) == 0 {
		bind = []net.Addr{&net.TCPAddr{}}
	}

	s := &tcpServer{
		p:     p,
		exec:  exec,
		hf:    hf,
		sock:  sock,
		conns: newCloserSet(),
	}
	if p.cfg.MaxConnections > 0 {
		s.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "tcp-server",
			MaxConcurrent: p.cfg.MaxConnections,
		})
	}
	if p.cfg.AcceptRate > 0 {
		s.limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  "tcp-server",
			Rate:  p.cfg.AcceptRate,
			Burst: p.cfg.AcceptBurst,
		})
	}

	lc := sock.listenConfig()
	for _, a := range bind {
		addr, err := tcpAddr(a)
		if err != nil {
			s.closeListeners()
			return nil, errors.InvalidInput("bind", err.Error())
		}
		l, err := lc.Listen(ctx, "tcp", addr.String())
		if err != nil {
			s.closeListeners()
			return nil, errors.ConnectionFailed("listener on "+addr.String(), err)
		}
		s.listeners = append(s.listeners, l.(*net.TCPListener))
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.log = p.log.WithFields(logger.Fields(logger.FieldKind, provider.KindTCPServer.String()))
	if !p.resources.add(s) {
		s.cancel()
		s.closeListeners()
		return nil, errors.ProviderClosed(p.Name())
	}

	for _, l := range s.listeners {
		s.wg.Add(1)
		go s.serve(l)
	}
	s.log.Info("tcp server listening", logger.Fields(logger.FieldAddress, addrStrings(s.Addrs())))
	return s, nil
}

// Addrs implements channels.BoundServer.
func (s *tcpServer) Addrs() []net.Addr {
	addrs := make([]net.Addr, len(s.listeners))
	for i, l := range s.listeners {
		addrs[i] = l.Addr()
	}
	return addrs
}

// Close stops accepting, closes every open connection and waits for the
// accept loops to exit.
func (s *tcpServer) Close() error {
	s.once.Do(func() {
		s.cancel()
		err := s.closeListeners()
		s.wg.Wait()
		s.err = stderrors.Join(err, s.conns.closeAll())
		s.p.resources.remove(s)
		s.log.Info("tcp server closed", logger.Fields(logger.FieldAddress, addrStrings(s.Addrs())))
	})
	return s.err
}

func (s *tcpServer) closeListeners() error {
	var errs []error
	for _, l := range s.listeners {
		if err := l.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (s *tcpServer) serve(l *net.TCPListener) {
	defer s.wg.Done()
	failures := 0
	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(s.ctx); err != nil {
				return
			}
		}
		conn, err := l.AcceptTCP()
		if err != nil {
			if s.ctx.Err() != nil || stderrors.Is(err, net.ErrClosed) {
				return
			}
			failures++
			delay := resilience.Backoff(failures, acceptBackoff)
			s.log.Warn("accept failed", logger.ErrorFields("accept", err))
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		failures = 0
		s.accept(conn)
	}
}

func (s *tcpServer) accept(conn *net.TCPConn) {
	var release func()
	if s.bulkhead != nil {
		r, err := s.bulkhead.Acquire(s.ctx)
		if err != nil {
			s.log.Warn("connection rejected", logger.Fields(logger.FieldAddress, conn.RemoteAddr().String(), "reason", err.Error()))
			_ = conn.Close()
			return
		}
		release = r
	}
	if err := s.sock.applyTCP(conn); err != nil {
		s.log.Warn("socket options not applied", logger.ErrorFields("accept", err))
		_ = conn.Close()
		if release != nil {
			release()
		}
		return
	}

	ch := newTCPChannel(conn)
	if release != nil {
		ch.lc.onClose(release)
	}
	_ = attach[channels.TCPChannel](s.p, attachment{
		kind:   provider.KindTCPServer.String(),
		span:   observability.SpanTCPAccept,
		local:  conn.LocalAddr(),
		remote: conn.RemoteAddr(),
		owner:  s.conns,
		exec:   s.exec,
	}, ch, ch.lc, handlerFrom(s.hf))
}

// CreateTCPConnector implements provider.Provider.
func (p *Provider) CreateTCPConnector(exec executor.Executor) (*factory.ConfigurableFactory[channels.CloseableTCPConnector], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return factory.New(func(_ context.Context, opts factory.Options) (channels.CloseableTCPConnector, error) {
		c, err := p.newConnector(exec, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}, tcpConnectorOptions...), nil
}

// tcpConnector dials outbound connections, retrying with backoff up to the
// configured number of attempts. Established channels belong to the
// provider and outlive the connector.
type tcpConnector struct {
	p       *Provider
	exec    executor.Executor
	sock    socketOptions
	timeout time.Duration
	retry   resilience.RetryConfig

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func (p *Provider) newConnector(exec executor.Executor, opts factory.Options) (*tcpConnector, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	exec, err := p.executor(exec)
	if err != nil {
		return nil, err
	}
	sock, err := p.socketOptions(opts)
	if err != nil {
		return nil, err
	}
	attempts := factory.GetOr(opts, channels.ConnectAttempts, p.cfg.ConnectAttempts)
	timeout := factory.GetOr(opts, channels.ConnectTimeout, p.cfg.ConnectTimeout)
	v := validation.New().Min(channels.ConnectAttempts.Name(), attempts, 1)
	v.Custom(timeout >= 0, channels.ConnectTimeout.Name(), "must not be negative")
	if err := v.Validate(); err != nil {
		return nil, err
	}

	c := &tcpConnector{
		p:       p,
		exec:    exec,
		sock:    sock,
		timeout: timeout,
		retry:   p.cfg.retry(attempts),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	if !p.resources.add(c) {
		c.cancel()
		return nil, errors.ProviderClosed(p.Name())
	}
	return c, nil
}

func (c *tcpConnector) ConnectTo(ctx context.Context, dest net.Addr, h channels.Handler[channels.TCPChannel]) (*future.Future[channels.TCPChannel], error) {
	return c.ConnectFrom(ctx, nil, dest, h)
}

// ConnectFrom dials dest from src. ctx bounds the whole connect including
// retries; cancelling the returned future aborts it until the connection is
// established, after which cancellation is refused.
func (c *tcpConnector) ConnectFrom(ctx context.Context, src, dest net.Addr, h channels.Handler[channels.TCPChannel]) (*future.Future[channels.TCPChannel], error) {
	v := validation.New().Addr("destination", dest, tcpNetworks...)
	if src != nil {
		v.Addr("source", src, tcpNetworks...)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if c.ctx.Err() != nil {
		return nil, errors.New(errors.ErrCodeProviderClosed, "The TCP connector is closed")
	}

	dialCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	var established atomic.Bool
	f := future.New[channels.TCPChannel]()
	f.OnCancel(func() bool {
		if established.Load() {
			return false
		}
		cancel()
		return true
	})

	go func() {
		defer stop()
		defer cancel()
		conn, err := resilience.Retry(dialCtx, c.retry, func() (*net.TCPConn, error) {
			return c.dial(dialCtx, src, dest)
		})
		if err != nil {
			if dialCtx.Err() != nil {
				err = errors.Cancelled("connect").WithCause(err)
			}
			f.SetFailed(err)
			return
		}
		established.Store(true)
		if f.Status() != future.StatusWaiting {
			_ = conn.Close()
			return
		}
		if err := c.sock.applyTCP(conn); err != nil {
			_ = conn.Close()
			f.SetFailed(errors.ConnectionFailed("connection to "+dest.String(), err))
			return
		}

		ch := newTCPChannel(conn)
		err = attach[channels.TCPChannel](c.p, attachment{
			kind:   provider.KindTCPConnector.String(),
			span:   observability.SpanTCPConnect,
			local:  conn.LocalAddr(),
			remote: conn.RemoteAddr(),
			owner:  c.p.resources,
			exec:   c.exec,
		}, ch, ch.lc, orNoop(h))
		if err != nil {
			f.SetFailed(err)
			return
		}
		if !f.SetResult(ch) {
			_ = ch.Close()
		}
	}()
	return f, nil
}

func (c *tcpConnector) dial(ctx context.Context, src, dest net.Addr) (*net.TCPConn, error) {
	d := net.Dialer{Timeout: c.timeout, KeepAlive: c.sock.keepAlivePeriod()}
	if src != nil {
		local, err := tcpAddr(src)
		if err != nil {
			return nil, errors.InvalidInput("source", err.Error())
		}
		d.LocalAddr = local
	}
	conn, err := d.DialContext(ctx, "tcp", dest.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.ConnectionFailed("connection to "+dest.String(), err)
	}
	return conn.(*net.TCPConn), nil
}

// Close aborts pending connects. Channels already established stay open.
func (c *tcpConnector) Close() error {
	c.once.Do(func() {
		c.cancel()
		c.p.resources.remove(c)
	})
	return nil
}

// CreateTCPAcceptor implements provider.Provider.
func (p *Provider) CreateTCPAcceptor(exec executor.Executor) (*factory.ConfigurableFactory[channels.TCPAcceptor], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return factory.New(func(_ context.Context, opts factory.Options) (channels.TCPAcceptor, error) {
		a, err := p.newAcceptor(exec, opts)
		if err != nil {
			return nil, err
		}
		return a, nil
	}, tcpAcceptorOptions...), nil
}

// tcpAcceptor listens for exactly one connection per AcceptTo call.
type tcpAcceptor struct {
	p    *Provider
	exec executor.Executor
	sock socketOptions

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	mu      sync.Mutex
	pending map[*net.TCPListener]struct{}
}

func (p *Provider) newAcceptor(exec executor.Executor, opts factory.Options) (*tcpAcceptor, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	exec, err := p.executor(exec)
	if err != nil {
		return nil, err
	}
	sock, err := p.socketOptions(opts)
	if err != nil {
		return nil, err
	}
	a := &tcpAcceptor{
		p:       p,
		exec:    exec,
		sock:    sock,
		pending: make(map[*net.TCPListener]struct{}),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	if !p.resources.add(a) {
		a.cancel()
		return nil, errors.ProviderClosed(p.Name())
	}
	return a, nil
}

// AcceptTo starts listening on local before it returns, so Addrs already
// reports the bound address. ctx bounds the wait for the connection.
func (a *tcpAcceptor) AcceptTo(ctx context.Context, local net.Addr, h channels.Handler[channels.TCPChannel]) (*future.Future[channels.TCPChannel], error) {
	if local == nil {
		local = &net.TCPAddr{}
	}
	if err := validation.New().Addr("local", local, tcpNetworks...).Validate(); err != nil {
		return nil, err
	}
	addr, err := tcpAddr(local)
	if err != nil {
		return nil, errors.InvalidInput("local", err.Error())
	}
	if a.ctx.Err() != nil {
		return nil, errors.New(errors.ErrCodeProviderClosed, "The TCP acceptor is closed")
	}

	lc := a.sock.listenConfig()
	l, err := lc.Listen(ctx, "tcp", addr.String())
	if err != nil {
		return nil, errors.ConnectionFailed("listener on "+addr.String(), err)
	}
	tl := l.(*net.TCPListener)
	if !a.track(tl) {
		_ = tl.Close()
		return nil, errors.New(errors.ErrCodeProviderClosed, "The TCP acceptor is closed")
	}

	var accepted atomic.Bool
	f := future.New[channels.TCPChannel]()
	f.OnCancel(func() bool {
		if accepted.Load() {
			return false
		}
		_ = tl.Close()
		return true
	})
	stopCaller := context.AfterFunc(ctx, func() { _ = tl.Close() })
	stopOwner := context.AfterFunc(a.ctx, func() { _ = tl.Close() })

	go func() {
		defer stopCaller()
		defer stopOwner()
		conn, err := tl.AcceptTCP()
		_ = tl.Close()
		a.forget(tl)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				f.SetFailed(errors.Cancelled("accept").WithCause(ctx.Err()))
			case a.ctx.Err() != nil:
				f.SetFailed(errors.New(errors.ErrCodeProviderClosed, "The TCP acceptor is closed"))
			default:
				f.SetFailed(errors.ConnectionFailed("accept on "+tl.Addr().String(), err))
			}
			return
		}
		accepted.Store(true)
		if f.Status() != future.StatusWaiting {
			_ = conn.Close()
			return
		}
		if err := a.sock.applyTCP(conn); err != nil {
			_ = conn.Close()
			f.SetFailed(errors.ConnectionFailed("accept on "+tl.Addr().String(), err))
			return
		}

		ch := newTCPChannel(conn)
		err = attach[channels.TCPChannel](a.p, attachment{
			kind:   provider.KindTCPAcceptor.String(),
			span:   observability.SpanTCPAccept,
			local:  conn.LocalAddr(),
			remote: conn.RemoteAddr(),
			owner:  a.p.resources,
			exec:   a.exec,
		}, ch, ch.lc, orNoop(h))
		if err != nil {
			f.SetFailed(err)
			return
		}
		if !f.SetResult(ch) {
			_ = ch.Close()
		}
	}()
	return f, nil
}

// Addrs returns the addresses of accepts still waiting for a connection.
func (a *tcpAcceptor) Addrs() []net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	addrs := make([]net.Addr, 0, len(a.pending))
	for l := range a.pending {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

func (a *tcpAcceptor) track(l *net.TCPListener) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx.Err() != nil {
		return false
	}
	a.pending[l] = struct{}{}
	return true
}

func (a *tcpAcceptor) forget(l *net.TCPListener) {
	a.mu.Lock()
	delete(a.pending, l)
	a.mu.Unlock()
}

// Close aborts every pending accept.
func (a *tcpAcceptor) Close() error {
	a.once.Do(func() {
		a.mu.Lock()
		a.cancel()
		a.mu.Unlock()
		a.p.resources.remove(a)
	})
	return nil
}
