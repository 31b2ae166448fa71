package bootstrap

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/component"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/provider"
)

// OpenFunc materializes a bound server from the application's provider.
type OpenFunc func(ctx context.Context, p provider.Provider) (channels.BoundServer, error)

// Server is a component wrapping a TCP or UDP server. It binds on Start and
// closes the server, with every channel it accepted, on Stop.
type Server struct {
	name    string
	kind    provider.Kind
	manager *provider.Manager
	open    OpenFunc

	mu  sync.Mutex
	srv channels.BoundServer
}

// NewServer creates a server component that opens through the provider
// held by m.
func NewServer(name string, kind provider.Kind, m *provider.Manager, open OpenFunc) *Server {
	return &Server{name: name, kind: kind, manager: m, open: open}
}

// Name implements component.Component.
func (s *Server) Name() string { return s.name }

// Start implements component.Component.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil
	}

	p, err := s.manager.Get(ctx)
	if err != nil {
		return err
	}
	if caps := provider.Capabilities(p); caps != 0 && !caps.Has(s.kind) {
		return errors.OperationUnsupported(s.kind.String())
	}
	srv, err := s.open(ctx, p)
	if err != nil {
		return err
	}
	s.srv = srv
	return nil
}

// Stop implements component.Component.
func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Close()
}

// Health implements component.Component.
func (s *Server) Health(_ context.Context) component.Health {
	if len(s.Addrs()) == 0 {
		return component.Health{Name: s.name, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: s.name, Status: component.StatusHealthy}
}

// Addrs returns the bound addresses, or nil before Start.
func (s *Server) Addrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	return s.srv.Addrs()
}

// Describe implements component.Describable.
func (s *Server) Describe() component.Description {
	addrs := s.Addrs()
	d := component.Description{Name: s.name, Type: "server", Details: s.kind.String()}
	if len(addrs) == 0 {
		return d
	}

	list := make([]string, len(addrs))
	for i, a := range addrs {
		list[i] = a.String()
	}
	d.Details += " " + strings.Join(list, ", ")
	switch a := addrs[0].(type) {
	case *net.TCPAddr:
		d.Port = a.Port
	case *net.UDPAddr:
		d.Port = a.Port
	}
	return d
}
