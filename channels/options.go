package channels

import (
	"net"
	"time"

	"github.com/unbreakablehf/xnio/factory"
)

// Options understood by the first-party transports. Other providers may
// accept any subset.
var (
	// Backlog is the listen backlog hint for TCP servers.
	Backlog = factory.NewOption[int]("backlog")
	// ReuseAddresses allows rebinding an address in TIME_WAIT.
	ReuseAddresses = factory.NewOption[bool]("reuse_addresses")
	// KeepAlive enables TCP keep-alive on accepted or connected channels.
	KeepAlive = factory.NewOption[bool]("keep_alive")
	// TCPNoDelay disables Nagle's algorithm.
	TCPNoDelay = factory.NewOption[bool]("tcp_no_delay")
	// ReceiveBuffer sets SO_RCVBUF in bytes.
	ReceiveBuffer = factory.NewOption[int]("receive_buffer")
	// SendBuffer sets SO_SNDBUF in bytes.
	SendBuffer = factory.NewOption[int]("send_buffer")
	// ConnectTimeout bounds a single connect attempt.
	ConnectTimeout = factory.NewOption[time.Duration]("connect_timeout")
	// ConnectAttempts is the number of connect attempts, retried with backoff.
	ConnectAttempts = factory.NewOption[int]("connect_attempts")
	// MulticastTTL sets the outgoing multicast hop limit.
	MulticastTTL = factory.NewOption[int]("multicast_ttl")
	// MulticastInterface selects the interface for outgoing multicast.
	MulticastInterface = factory.NewOption[*net.Interface]("multicast_interface")
)
