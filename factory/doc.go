// Package factory implements ConfigurableFactory, the deferred-construction
// wrapper returned by the server, connector and acceptor operations of a
// provider.
//
//	f, _ := p.CreateTCPServer(nil, handlers)
//	_ = factory.Set(f, channels.Backlog, 128)
//	srv, err := f.Create(ctx) // bind happens here
package factory
