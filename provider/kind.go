package provider

import "strings"

// Kind identifies one transport-construction capability.
type Kind uint16

const (
	KindTCPServer Kind = 1 << iota
	KindTCPConnector
	KindTCPAcceptor
	KindUDPServer
	KindPipeServer
	KindPipeSourceServer
	KindPipeSinkServer
	KindPipeConnection
	KindOneWayPipeConnection
)

// AllKinds lists every kind in declaration order.
var AllKinds = []Kind{
	KindTCPServer,
	KindTCPConnector,
	KindTCPAcceptor,
	KindUDPServer,
	KindPipeServer,
	KindPipeSourceServer,
	KindPipeSinkServer,
	KindPipeConnection,
	KindOneWayPipeConnection,
}

// String returns the human-readable label used in OPERATION_UNSUPPORTED
// errors and logs.
func (k Kind) String() string {
	switch k {
	case KindTCPServer:
		return "TCP Server"
	case KindTCPConnector:
		return "TCP Connector"
	case KindTCPAcceptor:
		return "TCP Acceptor"
	case KindUDPServer:
		return "UDP Server"
	case KindPipeServer:
		return "Pipe Server"
	case KindPipeSourceServer, KindPipeSinkServer:
		return "One-way Pipe Server"
	case KindPipeConnection:
		return "Pipe Connection"
	case KindOneWayPipeConnection:
		return "One-way Pipe Connection"
	default:
		return "Unknown"
	}
}

// KindSet is a set of kinds.
type KindSet uint16

// NewKindSet returns a set holding kinds.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= KindSet(k)
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool { return s&KindSet(k) != 0 }

// Kinds returns the members in declaration order.
func (s KindSet) Kinds() []Kind {
	var out []Kind
	for _, k := range AllKinds {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// String lists the member labels.
func (s KindSet) String() string {
	kinds := s.Kinds()
	labels := make([]string, 0, len(kinds))
	for _, k := range kinds {
		labels = append(labels, k.String())
	}
	return "[" + strings.Join(labels, ", ") + "]"
}
