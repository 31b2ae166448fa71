package nio

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/observability"
)

// lifecycle is the open/closed state shared by every channel type. The
// release hooks run once, after the underlying endpoint is closed.
type lifecycle struct {
	id      string
	closed  atomic.Bool
	once    sync.Once
	close   func() error
	mu      sync.Mutex
	release []func()
}

func newLifecycle(closeFn func() error) *lifecycle {
	return &lifecycle{id: uuid.NewString(), close: closeFn}
}

func (l *lifecycle) IsOpen() bool { return !l.closed.Load() }

func (l *lifecycle) onClose(fn func()) {
	l.mu.Lock()
	l.release = append(l.release, fn)
	l.mu.Unlock()
}

func (l *lifecycle) shutdown() error {
	var err error
	l.once.Do(func() {
		l.closed.Store(true)
		err = l.close()
		l.mu.Lock()
		release := l.release
		l.release = nil
		l.mu.Unlock()
		for i := len(release) - 1; i >= 0; i-- {
			release[i]()
		}
	})
	return err
}

// tcpChannel is a connected TCP stream.
type tcpChannel struct {
	*net.TCPConn
	lc *lifecycle
}

func newTCPChannel(conn *net.TCPConn) *tcpChannel {
	return &tcpChannel{TCPConn: conn, lc: newLifecycle(conn.Close)}
}

func (c *tcpChannel) IsOpen() bool { return c.lc.IsOpen() }
func (c *tcpChannel) Close() error { return c.lc.shutdown() }

// udpChannel is one bound datagram socket. The packet conns are only set
// when the server was created multicast-capable.
type udpChannel struct {
	*net.UDPConn
	lc *lifecycle
	p4 *ipv4.PacketConn
	p6 *ipv6.PacketConn
}

func newUDPChannel(conn *net.UDPConn) *udpChannel {
	return &udpChannel{UDPConn: conn, lc: newLifecycle(conn.Close)}
}

func (c *udpChannel) IsOpen() bool    { return c.lc.IsOpen() }
func (c *udpChannel) Close() error    { return c.lc.shutdown() }
func (c *udpChannel) Multicast() bool { return c.p4 != nil || c.p6 != nil }

func (c *udpChannel) JoinGroup(group net.IP, iface *net.Interface) error {
	switch {
	case !c.Multicast():
		return errors.OperationUnsupported("Multicast UDP Server")
	case group.To4() != nil && c.p4 != nil:
		return c.p4.JoinGroup(iface, &net.UDPAddr{IP: group})
	case group.To4() == nil && c.p6 != nil:
		return c.p6.JoinGroup(iface, &net.UDPAddr{IP: group})
	default:
		return errors.InvalidInput("group", "address family does not match the bound socket")
	}
}

func (c *udpChannel) LeaveGroup(group net.IP, iface *net.Interface) error {
	switch {
	case !c.Multicast():
		return errors.OperationUnsupported("Multicast UDP Server")
	case group.To4() != nil && c.p4 != nil:
		return c.p4.LeaveGroup(iface, &net.UDPAddr{IP: group})
	case group.To4() == nil && c.p6 != nil:
		return c.p6.LeaveGroup(iface, &net.UDPAddr{IP: group})
	default:
		return errors.InvalidInput("group", "address family does not match the bound socket")
	}
}

// pipeChannel is one end of a bidirectional in-process pipe.
type pipeChannel struct {
	net.Conn
	lc *lifecycle
}

func newPipeChannel(conn net.Conn) *pipeChannel {
	return &pipeChannel{Conn: conn, lc: newLifecycle(conn.Close)}
}

func (c *pipeChannel) IsOpen() bool { return c.lc.IsOpen() }
func (c *pipeChannel) Close() error { return c.lc.shutdown() }

// pipeSource is the reading end of a one-way pipe.
type pipeSource struct {
	r  *io.PipeReader
	lc *lifecycle
}

func newPipeSource(r *io.PipeReader) *pipeSource {
	return &pipeSource{r: r, lc: newLifecycle(r.Close)}
}

func (c *pipeSource) Read(p []byte) (int, error) { return c.r.Read(p) }
func (c *pipeSource) IsOpen() bool               { return c.lc.IsOpen() }
func (c *pipeSource) Close() error               { return c.lc.shutdown() }

// pipeSink is the writing end of a one-way pipe. Closing it delivers EOF to
// the reader.
type pipeSink struct {
	w  *io.PipeWriter
	lc *lifecycle
}

func newPipeSink(w *io.PipeWriter) *pipeSink {
	return &pipeSink{w: w, lc: newLifecycle(w.Close)}
}

func (c *pipeSink) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *pipeSink) IsOpen() bool                { return c.lc.IsOpen() }
func (c *pipeSink) Close() error                { return c.lc.shutdown() }

var (
	_ channels.TCPChannel          = (*tcpChannel)(nil)
	_ channels.UDPChannel          = (*udpChannel)(nil)
	_ channels.StreamChannel       = (*pipeChannel)(nil)
	_ channels.StreamSourceChannel = (*pipeSource)(nil)
	_ channels.StreamSinkChannel   = (*pipeSink)(nil)
)

// noopHandler stands in for a nil handler.
type noopHandler[C any] struct{}

func (noopHandler[C]) HandleOpened(C) {}
func (noopHandler[C]) HandleClosed(C) {}

func handlerFrom[C any](hf channels.HandlerFactory[C]) channels.Handler[C] {
	if hf == nil {
		return noopHandler[C]{}
	}
	if h := hf.CreateHandler(); h != nil {
		return h
	}
	return noopHandler[C]{}
}

func orNoop[C any](h channels.Handler[C]) channels.Handler[C] {
	if h == nil {
		return noopHandler[C]{}
	}
	return h
}

// attachment describes where a new channel comes from, for logs, metrics
// and the set that owns it.
type attachment struct {
	kind   string
	span   string
	local  net.Addr
	remote net.Addr
	owner  *closerSet
	exec   executor.Executor
}

// attach registers ch with its owner, starts its observability span and
// dispatches HandleOpened on the executor. Closing ch later releases all of
// that and runs HandleClosed exactly once, never before HandleOpened has
// returned. If HandleOpened cannot be scheduled the channel is closed
// without notifying the handler and the error returned.
func attach[C channels.Channel](p *Provider, a attachment, ch C, lc *lifecycle, h channels.Handler[C]) error {
	if !a.owner.add(ch) {
		_ = lc.shutdown()
		return errors.ProviderClosed(p.Name())
	}

	cc := observability.NewConnContext(p.Name(), a.kind, lc.id, p.metrics)
	if a.local != nil {
		cc.LocalAddr = a.local.String()
	}
	if a.remote != nil {
		cc.RemoteAddr = a.remote.String()
	}
	ctx, span := cc.Open(logger.ContextWithConnID(context.Background(), lc.id), a.span)
	log := p.log.WithContext(ctx)
	log.Debug("channel opened", logger.Fields(logger.FieldKind, a.kind, logger.FieldAddress, cc.RemoteAddr))

	run := &handlerRun[C]{h: h, ch: ch, exec: a.exec}
	lc.onClose(func() {
		a.owner.remove(ch)
		cc.Close(ctx, span, nil)
		log.Debug("channel closed", logger.DurationFields("channel", cc.Lifetime()))
		run.closed()
	})

	if err := a.exec.Execute(run.opened); err != nil {
		log.Warn("handler not scheduled", logger.ErrorFields("open", err))
		run.abandon()
		_ = ch.Close()
		return err
	}
	return nil
}

// handlerRun orders the two handler callbacks of one channel.
type handlerRun[C any] struct {
	h    channels.Handler[C]
	ch   C
	exec executor.Executor

	mu        sync.Mutex
	done      bool
	pending   bool
	abandoned bool
}

func (r *handlerRun[C]) opened() {
	r.h.HandleOpened(r.ch)
	r.mu.Lock()
	r.done = true
	pending := r.pending
	r.mu.Unlock()
	if pending {
		r.h.HandleClosed(r.ch)
	}
}

func (r *handlerRun[C]) closed() {
	r.mu.Lock()
	switch {
	case r.abandoned:
		r.mu.Unlock()
	case r.done:
		r.mu.Unlock()
		dispatch(r.exec, func() { r.h.HandleClosed(r.ch) })
	default:
		r.pending = true
		r.mu.Unlock()
	}
}

func (r *handlerRun[C]) abandon() {
	r.mu.Lock()
	r.abandoned = true
	r.mu.Unlock()
}

// dispatch runs task on exec, or inline when exec refuses it, for work that
// must happen even while the executor shuts down.
func dispatch(exec executor.Executor, task func()) {
	if err := exec.Execute(task); err != nil {
		task()
	}
}

// closerSet tracks live resources so that they can be closed together.
// Every tracked value is a pointer, so it is safe as a map key.
type closerSet struct {
	mu     sync.Mutex
	items  map[io.Closer]struct{}
	closed bool
}

func newCloserSet() *closerSet {
	return &closerSet{items: make(map[io.Closer]struct{})}
}

func (s *closerSet) add(c io.Closer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.items[c] = struct{}{}
	return true
}

func (s *closerSet) remove(c io.Closer) {
	s.mu.Lock()
	delete(s.items, c)
	s.mu.Unlock()
}

func (s *closerSet) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *closerSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// closeAll refuses further additions and closes everything still tracked.
func (s *closerSet) closeAll() error {
	s.mu.Lock()
	s.closed = true
	items := make([]io.Closer, 0, len(s.items))
	for c := range s.items {
		items = append(items, c)
	}
	s.mu.Unlock()

	var errs []error
	for _, c := range items {
		if err := c.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
