package nio

import (
	"io"
	"sync/atomic"
	"testing"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/executor"
)

func TestPipeConnection(t *testing.T) {
	p := newTestProvider(t)
	reply := make(chan string, 1)

	left := channels.HandlerFuncs[channels.StreamChannel]{
		Opened: func(ch channels.StreamChannel) {
			if _, err := ch.Write([]byte("ping")); err != nil {
				reply <- err.Error()
				return
			}
			buf := make([]byte, 4)
			if _, err := io.ReadFull(ch, buf); err != nil {
				reply <- err.Error()
				return
			}
			reply <- string(buf)
			_ = ch.Close()
		},
	}
	right := echo[channels.StreamChannel]().CreateHandler()

	fut, err := p.CreatePipeConnection(executor.Goroutine, left, right)
	if err != nil {
		t.Fatalf("CreatePipeConnection: %v", err)
	}
	conn, err := fut.Await(testContext(t))
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	defer conn.Close()

	if got := recv(t, reply); got != "ping" {
		t.Errorf("expected ping echoed back, got %q", got)
	}
}

func TestPipeServerIndependentConnections(t *testing.T) {
	p := newTestProvider(t)
	source, err := p.CreatePipeServer(executor.Goroutine, echo[channels.StreamChannel]())
	if err != nil {
		t.Fatalf("CreatePipeServer: %v", err)
	}

	first, err := source.Open(testContext(t), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := source.Open(testContext(t), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a, err := first.Await(testContext(t))
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	b, err := second.Await(testContext(t))
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if a == b {
		t.Fatal("expected two distinct channels")
	}

	roundTrip(t, b, "second")
	roundTrip(t, a, "first")

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	roundTrip(t, b, "still open")
}

func TestPipeSourceServer(t *testing.T) {
	p := newTestProvider(t)
	writer := channels.Shared[channels.StreamSinkChannel](channels.HandlerFuncs[channels.StreamSinkChannel]{
		Opened: func(ch channels.StreamSinkChannel) {
			_, _ = ch.Write([]byte("from server"))
			_ = ch.Close()
		},
	})
	source, err := p.CreatePipeSourceServer(executor.Goroutine, writer)
	if err != nil {
		t.Fatalf("CreatePipeSourceServer: %v", err)
	}

	fut, err := source.Open(testContext(t), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ch, err := fut.Await(testContext(t))
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	data, err := io.ReadAll(ch)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "from server" {
		t.Errorf("expected server data, got %q", data)
	}
}

func TestPipeSinkServer(t *testing.T) {
	p := newTestProvider(t)
	got := make(chan string, 1)
	reader := channels.Shared[channels.StreamSourceChannel](channels.HandlerFuncs[channels.StreamSourceChannel]{
		Opened: func(ch channels.StreamSourceChannel) {
			data, _ := io.ReadAll(ch)
			got <- string(data)
		},
	})
	sink, err := p.CreatePipeSinkServer(executor.Goroutine, reader)
	if err != nil {
		t.Fatalf("CreatePipeSinkServer: %v", err)
	}

	fut, err := sink.Open(testContext(t), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ch, err := fut.Await(testContext(t))
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if _, err := ch.Write([]byte("from client")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = ch.Close()

	if v := recv(t, got); v != "from client" {
		t.Errorf("expected client data, got %q", v)
	}
}

func TestOneWayPipeConnection(t *testing.T) {
	p := newTestProvider(t)
	got := make(chan string, 1)

	source := channels.HandlerFuncs[channels.StreamSourceChannel]{
		Opened: func(ch channels.StreamSourceChannel) {
			data, _ := io.ReadAll(ch)
			got <- string(data)
		},
	}
	sink := channels.HandlerFuncs[channels.StreamSinkChannel]{
		Opened: func(ch channels.StreamSinkChannel) {
			_, _ = ch.Write([]byte("one way"))
			_ = ch.Close()
		},
	}

	fut, err := p.CreateOneWayPipeConnection(executor.Goroutine, source, sink)
	if err != nil {
		t.Fatalf("CreateOneWayPipeConnection: %v", err)
	}
	conn, err := fut.Await(testContext(t))
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	defer conn.Close()

	if v := recv(t, got); v != "one way" {
		t.Errorf("expected %q, got %q", "one way", v)
	}
}

func TestHandleClosedRunsOnce(t *testing.T) {
	p := newTestProvider(t)
	var opened, closed atomic.Int32
	done := make(chan struct{}, 2)
	h := channels.HandlerFuncs[channels.StreamChannel]{
		Opened: func(channels.StreamChannel) { opened.Add(1) },
		Closed: func(channels.StreamChannel) {
			closed.Add(1)
			done <- struct{}{}
		},
	}

	fut, err := p.CreatePipeConnection(executor.Direct, h, h)
	if err != nil {
		t.Fatalf("CreatePipeConnection: %v", err)
	}
	conn, err := fut.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	_ = conn.Close()
	recv(t, done)
	recv(t, done)

	if opened.Load() != 2 || closed.Load() != 2 {
		t.Errorf("expected 2 opened and 2 closed, got %d and %d", opened.Load(), closed.Load())
	}
}

func TestHandleClosedWaitsForOpened(t *testing.T) {
	p := newTestProvider(t)
	var order []string
	done := make(chan struct{})
	h := channels.HandlerFuncs[channels.StreamChannel]{
		Opened: func(ch channels.StreamChannel) {
			_ = ch.Close()
			order = append(order, "opened")
		},
		Closed: func(channels.StreamChannel) {
			order = append(order, "closed")
			close(done)
		},
	}

	single := executor.NewPool(executor.PoolConfig{Name: "single", Workers: 1})
	defer single.Close()
	if _, err := p.CreatePipeConnection(single, h, nil); err != nil {
		t.Fatalf("CreatePipeConnection: %v", err)
	}
	recv(t, done)

	if len(order) != 2 || order[0] != "opened" || order[1] != "closed" {
		t.Errorf("expected opened before closed, got %v", order)
	}
}
