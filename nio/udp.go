package nio

import (
	"context"
	stderrors "errors"
	"net"
	"slices"
	"sync"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/factory"
	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/provider"
	"github.com/unbreakablehf/xnio/validation"
)

// SpanUDPBind names the span of one bound datagram socket.
const SpanUDPBind = "nio.udp.bind"

var udpNetworks = []string{"udp", "udp4", "udp6"}

// CreateUDPServer implements provider.Provider. Every bind address becomes
// one UDPChannel handed to its own handler. With multicast set the sockets
// are also prepared for group membership, and Create fails with
// OPERATION_UNSUPPORTED when a socket cannot take multicast control. Without
// it JoinGroup fails and the multicast options are rejected.
func (p *Provider) CreateUDPServer(exec executor.Executor, multicast bool, hf channels.HandlerFactory[channels.UDPChannel], bind ...net.Addr) (*factory.ConfigurableFactory[channels.BoundServer], error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	v := validation.New().NotNil("handler_factory", hf)
	for _, a := range bind {
		v.Addr("bind", a, udpNetworks...)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	bind = slices.Clone(bind)
	return factory.New(func(ctx context.Context, opts factory.Options) (channels.BoundServer, error) {
		s, err := p.listenUDP(ctx, exec, multicast, hf, bind, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, udpServerOptions...), nil
}

type multicastOptions struct {
	ttl   int
	iface *net.Interface
	set   bool
}

func multicastFrom(opts factory.Options) multicastOptions {
	var m multicastOptions
	var hasTTL, hasIface bool
	m.ttl, hasTTL = factory.Get(opts, channels.MulticastTTL)
	m.iface, hasIface = factory.Get(opts, channels.MulticastInterface)
	m.set = hasTTL || hasIface
	return m
}

// udpServer owns the channels of one CreateUDPServer call.
type udpServer struct {
	p        *Provider
	channels []*udpChannel
	log      *logger.Logger
	once     sync.Once
	err      error
}

func (p *Provider) listenUDP(ctx context.Context, exec executor.Executor, multicast bool, hf channels.HandlerFactory[channels.UDPChannel], bind []net.Addr, opts factory.Options) (*udpServer, error) {
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
	mc := multicastFrom(opts)
	if mc.set && !multicast {
		return nil, errors.InvalidInput(channels.MulticastTTL.Name(), "multicast options require a multicast server")
	}
	if mc.ttl < 0 || mc.ttl > 255 {
		return nil, errors.InvalidInput(channels.MulticastTTL.Name(), "must be between 0 and 255")
	}
	if len(bind) == 0 {
		bind = []net.Addr{&net.UDPAddr{}}
	}

	s := &udpServer{
		p:   p,
		log: p.log.WithFields(logger.Fields(logger.FieldKind, provider.KindUDPServer.String())),
	}
	for _, a := range bind {
		addr, err := udpAddr(a)
		if err != nil {
			s.closeChannels()
			return nil, errors.InvalidInput("bind", err.Error())
		}
		ch, err := bindUDP(ctx, addr, sock, multicast, mc)
		if err != nil {
			s.closeChannels()
			return nil, err
		}
		s.channels = append(s.channels, ch)
	}

	if !p.resources.add(s) {
		s.closeChannels()
		return nil, errors.ProviderClosed(p.Name())
	}
	owner := newCloserSet()
	for _, ch := range s.channels {
		err := attach[channels.UDPChannel](p, attachment{
			kind:  provider.KindUDPServer.String(),
			span:  SpanUDPBind,
			local: ch.LocalAddr(),
			owner: owner,
			exec:  exec,
		}, ch, ch.lc, handlerFrom(hf))
		if err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	s.log.Info("udp server bound", logger.Fields(logger.FieldAddress, addrStrings(s.Addrs()), "multicast", multicast))
	return s, nil
}

func bindUDP(ctx context.Context, addr *net.UDPAddr, sock socketOptions, multicast bool, mc multicastOptions) (*udpChannel, error) {
	lc := sock.listenConfig()
	pc, err := lc.ListenPacket(ctx, "udp", addr.String())
	if err != nil {
		return nil, errors.ConnectionFailed("udp socket on "+addr.String(), err)
	}
	conn := pc.(*net.UDPConn)
	if err := sock.applyBuffers(conn); err != nil {
		_ = conn.Close()
		return nil, errors.ConnectionFailed("udp socket on "+addr.String(), err)
	}
	ch := newUDPChannel(conn)
	if !multicast {
		return ch, nil
	}

	if addr.IP == nil || addr.IP.To4() != nil {
		ch.p4 = ipv4.NewPacketConn(conn)
	}
	if addr.IP == nil || addr.IP.To4() == nil {
		ch.p6 = ipv6.NewPacketConn(conn)
	}
	if err := configureMulticast(ch, mc); err != nil {
		_ = conn.Close()
		return nil, errors.OperationUnsupported("Multicast UDP Server").
			WithCause(err).
			WithDetail("address", addr.String())
	}
	return ch, nil
}

// configureMulticast checks that the socket supports multicast control and
// applies the outgoing multicast options. On a dual-stack socket it is
// enough for one address family to accept them.
func configureMulticast(ch *udpChannel, mc multicastOptions) error {
	var errs []error
	ok := false
	if ch.p4 != nil {
		if err := applyIPv4Multicast(ch.p4, mc); err != nil {
			errs = append(errs, err)
		} else {
			ok = true
		}
	}
	if ch.p6 != nil {
		if err := applyIPv6Multicast(ch.p6, mc); err != nil {
			errs = append(errs, err)
		} else {
			ok = true
		}
	}
	if ok {
		return nil
	}
	return stderrors.Join(errs...)
}

func applyIPv4Multicast(pc *ipv4.PacketConn, mc multicastOptions) error {
	if _, err := pc.MulticastLoopback(); err != nil {
		return err
	}
	if mc.ttl > 0 {
		if err := pc.SetMulticastTTL(mc.ttl); err != nil {
			return err
		}
	}
	if mc.iface != nil {
		return pc.SetMulticastInterface(mc.iface)
	}
	return nil
}

func applyIPv6Multicast(pc *ipv6.PacketConn, mc multicastOptions) error {
	if _, err := pc.MulticastLoopback(); err != nil {
		return err
	}
	if mc.ttl > 0 {
		if err := pc.SetMulticastHopLimit(mc.ttl); err != nil {
			return err
		}
	}
	if mc.iface != nil {
		return pc.SetMulticastInterface(mc.iface)
	}
	return nil
}

// Addrs implements channels.BoundServer.
func (s *udpServer) Addrs() []net.Addr {
	addrs := make([]net.Addr, len(s.channels))
	for i, ch := range s.channels {
		addrs[i] = ch.LocalAddr()
	}
	return addrs
}

// Close closes every bound socket.
func (s *udpServer) Close() error {
	s.once.Do(func() {
		s.err = s.closeChannels()
		s.p.resources.remove(s)
		s.log.Info("udp server closed", logger.Fields(logger.FieldAddress, addrStrings(s.Addrs())))
	})
	return s.err
}

func (s *udpServer) closeChannels() error {
	var errs []error
	for _, ch := range s.channels {
		if err := ch.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
