// Package executor defines the Executor capability handlers run on, plus
// the stock implementations: Direct, Goroutine and a worker Pool whose FIFO
// queue is backed by github.com/eapache/queue.
package executor
