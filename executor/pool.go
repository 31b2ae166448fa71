package executor

import (
	"runtime"
	"sync"

	"github.com/eapache/queue"

	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/logger"
)

// PoolConfig configures a worker pool.
type PoolConfig struct {
	// Name identifies the pool in logs and errors.
	Name string `mapstructure:"name"`
	// Workers is the number of worker goroutines. Defaults to GOMAXPROCS.
	Workers int `mapstructure:"workers" validate:"gte=0"`
	// QueueSize bounds pending tasks. 0 means unbounded.
	QueueSize int `mapstructure:"queue_size" validate:"gte=0"`
}

// Pool is a fixed-size worker pool with a FIFO task queue.
type Pool struct {
	cfg     PoolConfig
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	closed  bool
	wg      sync.WaitGroup
	done    chan struct{}
	log     *logger.Logger
	running int
}

// NewPool starts a pool with cfg.Workers workers.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Name == "" {
		cfg.Name = "pool"
	}
	p := &Pool{
		cfg:   cfg,
		tasks: queue.New(),
		done:  make(chan struct{}),
		log:   logger.Get("executor").WithFields(logger.Fields("pool", cfg.Name)),
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(cfg.Workers)
	for range cfg.Workers {
		go p.work()
	}
	go func() {
		p.wg.Wait()
		p.log.Debug("pool stopped")
		close(p.done)
	}()
	return p
}

// Execute enqueues task. It fails once the pool is closed or when a bounded
// queue is full.
func (p *Pool) Execute(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.TaskRejected(p.cfg.Name, "pool is closed")
	}
	if p.cfg.QueueSize > 0 && p.tasks.Length() >= p.cfg.QueueSize {
		return errors.TaskRejected(p.cfg.Name, "queue is full")
	}
	p.tasks.Add(task)
	p.cond.Signal()
	return nil
}

// Pending returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks.Length()
}

// Active returns the number of tasks currently running.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.cfg.Workers }

// Shutdown stops accepting tasks and returns without waiting. Workers
// drain the queue and exit; the returned channel is closed once they have.
// It is safe to call from a task running on the pool.
func (p *Pool) Shutdown() <-chan struct{} {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.cond.Broadcast()
	}
	p.mu.Unlock()
	return p.done
}

// Done is closed after Shutdown once every worker has exited.
func (p *Pool) Done() <-chan struct{} { return p.done }

// Close shuts the pool down and waits for the workers to exit. Repeated
// calls are no-ops. Calling it from one of the pool's own tasks deadlocks;
// use Shutdown there.
func (p *Pool) Close() error {
	<-p.Shutdown()
	return nil
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.tasks.Length() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.tasks.Length() == 0 {
			p.mu.Unlock()
			return
		}
		task := p.tasks.Remove().(func())
		p.running++
		p.mu.Unlock()

		p.run(task)

		p.mu.Lock()
		p.running--
		p.mu.Unlock()
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", logger.Fields("panic", r))
		}
	}()
	task()
}
