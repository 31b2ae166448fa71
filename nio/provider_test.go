package nio

import (
	"context"
	stderrors "errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/config"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/provider"
)

type wakeFunc func()

func (f wakeFunc) Wake() { f() }

func TestProviderIdentity(t *testing.T) {
	p := newTestProvider(t)
	if p.Name() != "nio" {
		t.Errorf("expected name nio, got %q", p.Name())
	}
	if !strings.HasPrefix(p.Version(), "nio/") {
		t.Errorf("expected version prefixed with nio/, got %q", p.Version())
	}
	for _, k := range provider.AllKinds {
		if !provider.Supports(p, k) {
			t.Errorf("expected %s to be supported", k)
		}
	}
}

func TestLocatorFindsDefaultProvider(t *testing.T) {
	loc := provider.NewLocator(provider.WithSource(config.MapSource{}))
	if name := loc.Resolve(); name != provider.DefaultName {
		t.Fatalf("expected default name, got %q", name)
	}

	p, err := loc.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer p.Close()

	if _, ok := p.(*Provider); !ok {
		t.Fatalf("expected *nio.Provider, got %T", p)
	}
}

func TestDefaultExecutor(t *testing.T) {
	p := newTestProvider(t)
	if p.pool.IsInitialized() {
		t.Fatal("expected the default executor to start lazily")
	}

	opened := make(chan struct{}, 2)
	h := channels.HandlerFuncs[channels.StreamChannel]{
		Opened: func(channels.StreamChannel) { opened <- struct{}{} },
	}
	fut, err := p.CreatePipeConnection(nil, h, h)
	if err != nil {
		t.Fatalf("CreatePipeConnection: %v", err)
	}
	if _, err := fut.Await(testContext(t)); err != nil {
		t.Fatalf("await: %v", err)
	}
	recv(t, opened)
	recv(t, opened)

	if !p.pool.IsInitialized() {
		t.Error("expected the default executor to be running")
	}
}

func TestAwaken(t *testing.T) {
	p := newTestProvider(t)
	woken := make(chan struct{}, 1)
	p.Awaken(wakeFunc(func() { woken <- struct{}{} }))
	recv(t, woken)

	p.Awaken(nil)

	_ = p.Close()
	p.Awaken(wakeFunc(func() { t.Error("expected no wake-up after close") }))
}

func TestProviderClose(t *testing.T) {
	p := newTestProvider(t)
	srv := startEchoServer(t, p)
	addr := srv.Addrs()[0].String()

	closed := make(chan struct{}, 2)
	h := channels.HandlerFuncs[channels.StreamChannel]{
		Closed: func(channels.StreamChannel) { closed <- struct{}{} },
	}
	if _, err := p.CreatePipeConnection(executor.Goroutine, h, h); err != nil {
		t.Fatalf("CreatePipeConnection: %v", err)
	}

	pending, err := p.CreateTCPServer(nil, echo[channels.TCPChannel](), &net.TCPAddr{IP: loopback})
	if err != nil {
		t.Fatalf("CreateTCPServer: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	recv(t, closed)
	recv(t, closed)
	if n := p.resources.len(); n != 0 {
		t.Errorf("expected no live resources, got %d", n)
	}
	if _, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
		t.Error("expected the server to stop listening")
	}

	if _, err := pending.Create(testContext(t)); !stderrors.Is(err, errors.ErrProviderClosed) {
		t.Errorf("expected PROVIDER_CLOSED from an earlier factory, got %v", err)
	}

	calls := []struct {
		name string
		call func() error
	}{
		{"tcp server", func() error {
			_, err := p.CreateTCPServer(nil, echo[channels.TCPChannel]())
			return err
		}},
		{"tcp connector", func() error { _, err := p.CreateTCPConnector(nil); return err }},
		{"tcp acceptor", func() error { _, err := p.CreateTCPAcceptor(nil); return err }},
		{"pipe server", func() error { _, err := p.CreatePipeServer(nil, nil); return err }},
		{"pipe connection", func() error { _, err := p.CreatePipeConnection(nil, nil, nil); return err }},
		{"one-way pipe connection", func() error { _, err := p.CreateOneWayPipeConnection(nil, nil, nil); return err }},
	}
	for _, tc := range calls {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !stderrors.Is(err, errors.ErrProviderClosed) {
				t.Errorf("expected PROVIDER_CLOSED, got %v", err)
			}
		})
	}
}

func TestPipeServerAfterClose(t *testing.T) {
	p := newTestProvider(t)
	source, err := p.CreatePipeServer(executor.Goroutine, echo[channels.StreamChannel]())
	if err != nil {
		t.Fatalf("CreatePipeServer: %v", err)
	}
	_ = p.Close()

	if _, err := source.Open(testContext(t), nil); !stderrors.Is(err, errors.ErrProviderClosed) {
		t.Errorf("expected PROVIDER_CLOSED, got %v", err)
	}
}

func TestOpenWithCancelledContext(t *testing.T) {
	p := newTestProvider(t)
	source, _ := p.CreatePipeServer(executor.Goroutine, echo[channels.StreamChannel]())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := source.Open(ctx, nil); !stderrors.Is(err, errors.ErrCancelled) {
		t.Errorf("expected CANCELLED, got %v", err)
	}
}

func TestCloseFromHandler(t *testing.T) {
	p := newTestProvider(t)

	closed := make(chan error, 1)
	h := channels.HandlerFuncs[channels.StreamChannel]{
		Opened: func(channels.StreamChannel) { closed <- p.Close() },
	}
	if _, err := p.CreatePipeConnection(nil, h, nil); err != nil {
		t.Fatalf("CreatePipeConnection: %v", err)
	}
	if err := recv(t, closed); err != nil {
		t.Errorf("close from handler: %v", err)
	}
	if _, err := p.Executor(); !stderrors.Is(err, errors.ErrProviderClosed) {
		t.Errorf("expected PROVIDER_CLOSED from Executor, got %v", err)
	}
}

func TestExecutorFromHandleClosedDuringClose(t *testing.T) {
	p := newTestProvider(t)

	opened := make(chan struct{}, 2)
	results := make(chan error, 2)
	h := channels.HandlerFuncs[channels.StreamChannel]{
		Opened: func(channels.StreamChannel) { opened <- struct{}{} },
		Closed: func(channels.StreamChannel) {
			_, err := p.Executor()
			results <- err
		},
	}
	if _, err := p.CreatePipeConnection(nil, h, h); err != nil {
		t.Fatalf("CreatePipeConnection: %v", err)
	}
	recv(t, opened)
	recv(t, opened)

	done := make(chan error, 1)
	go func() { done <- p.Close() }()
	if err := recv(t, done); err != nil {
		t.Fatalf("close: %v", err)
	}
	for range 2 {
		if err := recv(t, results); !stderrors.Is(err, errors.ErrProviderClosed) {
			t.Errorf("expected PROVIDER_CLOSED inside HandleClosed, got %v", err)
		}
	}
}
