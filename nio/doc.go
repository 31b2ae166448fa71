// Package nio is the first-party xnio provider, built on the standard net
// package and golang.org/x/net for multicast.
//
// Importing the package registers it under provider.DefaultName, so a plain
// provider.Create finds it:
//
//	import _ "github.com/unbreakablehf/xnio/nio"
//
//	p, err := provider.Create(ctx)
//
// Every channel is served by goroutines parked on the runtime network
// poller. Handlers run on the executor passed to each Create call, or on a
// shared worker pool when that executor is nil. A handler that blocks in
// HandleOpened for the lifetime of its channel holds a pool worker, so size
// Config.Workers accordingly or pass executor.Goroutine.
//
// TCP servers honour Config.MaxConnections with a bulkhead and
// Config.AcceptRate with a token bucket. Connectors retry failed dials with
// exponential backoff up to ConnectAttempts.
//
// Closing the provider closes every server, connector, acceptor and channel
// it created. Afterwards every Create call, and Create on any factory
// obtained earlier, fails with PROVIDER_CLOSED.
package nio
