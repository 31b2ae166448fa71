package nio

import (
	"net"
	"time"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/factory"
	"github.com/unbreakablehf/xnio/validation"
)

// Option keys accepted by each factory. Backlog is never listed: net calls
// listen(2) after the socket control hook, so the kernel default applies.
// ReuseAddresses is listed only where reuseOptions can set it.
var (
	tcpServerOptions    = append([]factory.Key{channels.KeepAlive, channels.TCPNoDelay, channels.ReceiveBuffer, channels.SendBuffer}, reuseOptions...)
	tcpConnectorOptions = []factory.Key{channels.KeepAlive, channels.TCPNoDelay, channels.ReceiveBuffer, channels.SendBuffer, channels.ConnectTimeout, channels.ConnectAttempts}
	tcpAcceptorOptions  = append([]factory.Key{channels.KeepAlive, channels.TCPNoDelay, channels.ReceiveBuffer, channels.SendBuffer}, reuseOptions...)
	udpServerOptions    = append([]factory.Key{channels.ReceiveBuffer, channels.SendBuffer, channels.MulticastTTL, channels.MulticastInterface}, reuseOptions...)
)

// socketOptions is the resolved per-socket configuration of one factory.
type socketOptions struct {
	keepAlive    bool
	hasKeepAlive bool
	noDelay      bool
	hasNoDelay   bool
	reuse        bool
	hasReuse     bool
	recv, send   int
}

func (p *Provider) socketOptions(opts factory.Options) (socketOptions, error) {
	s := socketOptions{
		recv: factory.GetOr(opts, channels.ReceiveBuffer, p.cfg.receiveBuffer()),
		send: factory.GetOr(opts, channels.SendBuffer, p.cfg.sendBuffer()),
	}
	s.keepAlive, s.hasKeepAlive = factory.Get(opts, channels.KeepAlive)
	s.noDelay, s.hasNoDelay = factory.Get(opts, channels.TCPNoDelay)
	s.reuse, s.hasReuse = factory.Get(opts, channels.ReuseAddresses)

	v := validation.New().
		Min(channels.ReceiveBuffer.Name(), s.recv, 0).
		Min(channels.SendBuffer.Name(), s.send, 0)
	if err := v.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// keepAlivePeriod maps the option onto net.ListenConfig and net.Dialer,
// where a negative period disables keep-alive and zero keeps the default.
func (s socketOptions) keepAlivePeriod() time.Duration {
	if s.hasKeepAlive && !s.keepAlive {
		return -1
	}
	return 0
}

// listenConfig prepares listening and datagram sockets.
func (s socketOptions) listenConfig() net.ListenConfig {
	lc := net.ListenConfig{KeepAlive: s.keepAlivePeriod()}
	if s.hasReuse {
		lc.Control = reuseAddrControl(s.reuse)
	}
	return lc
}

func (s socketOptions) applyTCP(c *net.TCPConn) error {
	if s.hasKeepAlive {
		if err := c.SetKeepAlive(s.keepAlive); err != nil {
			return err
		}
	}
	if s.hasNoDelay {
		if err := c.SetNoDelay(s.noDelay); err != nil {
			return err
		}
	}
	return s.applyBuffers(c)
}

type bufferSetter interface {
	SetReadBuffer(bytes int) error
	SetWriteBuffer(bytes int) error
}

func (s socketOptions) applyBuffers(c bufferSetter) error {
	if s.recv > 0 {
		if err := c.SetReadBuffer(s.recv); err != nil {
			return err
		}
	}
	if s.send > 0 {
		if err := c.SetWriteBuffer(s.send); err != nil {
			return err
		}
	}
	return nil
}

// tcpAddr converts any "tcp" address to the concrete type net needs.
func tcpAddr(a net.Addr) (*net.TCPAddr, error) {
	if ta, ok := a.(*net.TCPAddr); ok {
		return ta, nil
	}
	return net.ResolveTCPAddr(a.Network(), a.String())
}

func udpAddr(a net.Addr) (*net.UDPAddr, error) {
	if ua, ok := a.(*net.UDPAddr); ok {
		return ua, nil
	}
	return net.ResolveUDPAddr(a.Network(), a.String())
}

func addrStrings(addrs []net.Addr) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}
