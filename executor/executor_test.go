package executor

import (
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unbreakablehf/xnio/errors"
)

func TestDirectRunsInline(t *testing.T) {
	ran := false
	if err := Direct.Execute(func() { ran = true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("expected task to run before Execute returns")
	}
}

func TestGoroutineRunsAsync(t *testing.T) {
	done := make(chan struct{})
	if err := Goroutine.Execute(func() { close(done) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil, Direct) == nil {
		t.Error("expected default executor for nil")
	}
	custom := Func(func(task func()) error { return nil })
	if _, ok := OrDefault(custom, Direct).(Func); !ok {
		t.Error("expected explicit executor to be kept")
	}
}

func TestPoolRunsAllTasks(t *testing.T) {
	p := NewPool(PoolConfig{Name: "test", Workers: 4})
	defer p.Close()

	var wg sync.WaitGroup
	var count atomic.Int64
	for range 100 {
		wg.Add(1)
		if err := p.Execute(func() {
			defer wg.Done()
			count.Add(1)
		}); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	wg.Wait()
	if count.Load() != 100 {
		t.Errorf("expected 100 tasks, got %d", count.Load())
	}
}

func TestPoolSingleWorkerIsFIFO(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1})

	var mu sync.Mutex
	var order []int
	for i := range 10 {
		if err := p.Execute(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	p.Close()

	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
	if len(order) != 10 {
		t.Errorf("expected queue to drain on close, got %d tasks", len(order))
	}
}

func TestPoolRejectsAfterClose(t *testing.T) {
	p := NewPool(PoolConfig{Name: "closed", Workers: 1})
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	err := p.Execute(func() {})
	if !stderrors.Is(err, errors.ErrTaskRejected) {
		t.Errorf("expected TASK_REJECTED, got %v", err)
	}
}

func TestPoolBoundedQueue(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, QueueSize: 1})
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	if err := p.Execute(func() { close(started); <-release }); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	<-started
	if err := p.Execute(func() {}); err != nil {
		t.Fatalf("expected one queued task to be accepted, got %v", err)
	}
	if err := p.Execute(func() {}); !stderrors.Is(err, errors.ErrTaskRejected) {
		t.Errorf("expected full queue rejection, got %v", err)
	}
	if p.Active() != 1 {
		t.Errorf("expected 1 active task, got %d", p.Active())
	}
	close(release)
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1})
	defer p.Close()

	_ = p.Execute(func() { panic("boom") })
	done := make(chan struct{})
	_ = p.Execute(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestPoolShutdownFromTask(t *testing.T) {
	p := NewPool(PoolConfig{Name: "self", Workers: 2})

	returned := make(chan struct{})
	if err := p.Execute(func() {
		p.Shutdown()
		close(returned)
	}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Shutdown blocked inside a pool task")
	}

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("workers did not exit after Shutdown")
	}
	if err := p.Execute(func() {}); !stderrors.Is(err, errors.ErrTaskRejected) {
		t.Errorf("expected TASK_REJECTED after Shutdown, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close after Shutdown: %v", err)
	}
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1})

	release := make(chan struct{})
	var ran atomic.Int32
	_ = p.Execute(func() { <-release })
	for range 3 {
		_ = p.Execute(func() { ran.Add(1) })
	}
	done := p.Shutdown()
	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not drain")
	}
	if ran.Load() != 3 {
		t.Errorf("expected queued tasks to run, got %d", ran.Load())
	}
}
