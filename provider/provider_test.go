package provider

import (
	stderrors "errors"
	"net"
	"testing"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/errors"
)

// testProvider overrides nothing but Name and Close.
type testProvider struct {
	Unsupported
	name   string
	closed int
}

func (p *testProvider) Name() string { return p.name }
func (p *testProvider) Close() error {
	p.closed++
	return nil
}

// reportingProvider advertises a fixed capability set.
type reportingProvider struct {
	testProvider
	kinds KindSet
}

func (p *reportingProvider) Capabilities() KindSet { return p.kinds }

func TestUnsupportedDefaults(t *testing.T) {
	p := &testProvider{name: "base"}
	bind := []net.Addr{&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}}
	noTCP := channels.HandlerFactoryFunc[channels.TCPChannel](func() channels.Handler[channels.TCPChannel] { return nil })

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"tcp server no bind", func() error { _, err := p.CreateTCPServer(nil, noTCP); return err }, "TCP Server"},
		{"tcp server with bind", func() error { _, err := p.CreateTCPServer(nil, noTCP, bind...); return err }, "TCP Server"},
		{"tcp connector", func() error { _, err := p.CreateTCPConnector(nil); return err }, "TCP Connector"},
		{"tcp acceptor", func() error { _, err := p.CreateTCPAcceptor(nil); return err }, "TCP Acceptor"},
		{"udp server", func() error { _, err := p.CreateUDPServer(nil, false, nil); return err }, "UDP Server"},
		{"multicast udp server", func() error { _, err := p.CreateUDPServer(nil, true, nil); return err }, "UDP Server"},
		{"pipe server", func() error { _, err := p.CreatePipeServer(nil, nil); return err }, "Pipe Server"},
		{"pipe source server", func() error { _, err := p.CreatePipeSourceServer(nil, nil); return err }, "One-way Pipe Server"},
		{"pipe sink server", func() error { _, err := p.CreatePipeSinkServer(nil, nil); return err }, "One-way Pipe Server"},
		{"pipe connection", func() error { _, err := p.CreatePipeConnection(nil, nil, nil); return err }, "Pipe Connection"},
		{"one-way pipe connection", func() error { _, err := p.CreateOneWayPipeConnection(nil, nil, nil); return err }, "One-way Pipe Connection"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if !stderrors.Is(err, errors.ErrOperationUnsupported) {
				t.Fatalf("expected OPERATION_UNSUPPORTED, got %v", err)
			}
			kind, ok := errors.UnsupportedKind(err)
			if !ok || kind != tc.want {
				t.Errorf("expected kind %q, got %q", tc.want, kind)
			}
			if stderrors.Is(err, errors.ErrProviderAcquisition) {
				t.Error("unsupported operation must not look like an acquisition failure")
			}
		})
	}
}

func TestUnsupportedAwakenIsNoop(t *testing.T) {
	p := &testProvider{name: "base"}
	woken := 0
	p.Awaken(wakeFunc(func() { woken++ }))
	if woken != 0 {
		t.Errorf("expected default Awaken to do nothing, woke %d times", woken)
	}
}

type wakeFunc func()

func (f wakeFunc) Wake() { f() }

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindTCPServer, "TCP Server"},
		{KindTCPConnector, "TCP Connector"},
		{KindTCPAcceptor, "TCP Acceptor"},
		{KindUDPServer, "UDP Server"},
		{KindPipeServer, "Pipe Server"},
		{KindPipeSourceServer, "One-way Pipe Server"},
		{KindPipeSinkServer, "One-way Pipe Server"},
		{KindPipeConnection, "Pipe Connection"},
		{KindOneWayPipeConnection, "One-way Pipe Connection"},
		{Kind(0), "Unknown"},
	}
	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestKindSet(t *testing.T) {
	s := NewKindSet(KindUDPServer, KindTCPServer)
	if !s.Has(KindTCPServer) || !s.Has(KindUDPServer) {
		t.Errorf("expected set to hold TCP and UDP servers: %s", s)
	}
	if s.Has(KindPipeServer) {
		t.Error("did not expect Pipe Server in set")
	}
	kinds := s.Kinds()
	if len(kinds) != 2 || kinds[0] != KindTCPServer || kinds[1] != KindUDPServer {
		t.Errorf("expected declaration order [TCP Server UDP Server], got %v", kinds)
	}
	if got := s.String(); got != "[TCP Server, UDP Server]" {
		t.Errorf("unexpected String(): %q", got)
	}
	if got := KindSet(0).String(); got != "[]" {
		t.Errorf("expected empty set to print [], got %q", got)
	}
}

func TestCapabilities(t *testing.T) {
	plain := &testProvider{name: "plain"}
	if Capabilities(plain) != 0 {
		t.Errorf("expected no advertised capabilities, got %s", Capabilities(plain))
	}

	rp := &reportingProvider{testProvider: testProvider{name: "rp"}, kinds: NewKindSet(KindPipeServer)}
	if !Supports(rp, KindPipeServer) {
		t.Error("expected Pipe Server to be supported")
	}
	if Supports(rp, KindTCPServer) {
		t.Error("did not expect TCP Server to be supported")
	}
}
