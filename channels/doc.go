// Package channels declares the channel kinds a provider hands to handlers
// (stream, source, sink, TCP, UDP), the Handler and HandlerFactory contracts,
// and the connector, acceptor and channel-source products of a provider.
//
// Channel kinds are opaque to the provider core; concrete transports live in
// provider implementations such as package nio.
package channels
