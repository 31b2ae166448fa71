package executor

// Executor runs units of work. Implementations decide where and when the
// task runs; callers only submit and never inspect internal state.
type Executor interface {
	Execute(task func()) error
}

// Func adapts a plain function to Executor.
type Func func(task func()) error

// Execute implements Executor.
func (f Func) Execute(task func()) error { return f(task) }

// Direct runs every task on the calling goroutine.
var Direct Executor = Func(func(task func()) error {
	task()
	return nil
})

// Goroutine runs every task on a fresh goroutine.
var Goroutine Executor = Func(func(task func()) error {
	go task()
	return nil
})

// OrDefault returns exec, or def when exec is nil.
func OrDefault(exec, def Executor) Executor {
	if exec != nil {
		return exec
	}
	return def
}
