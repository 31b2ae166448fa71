//go:build linux || darwin || freebsd || netbsd || openbsd

package nio

import (
	"net"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/factory"
)

func reuseAddr(t *testing.T, c syscall.Conn) int {
	t.Helper()
	raw, err := c.SyscallConn()
	if err != nil {
		t.Fatalf("SyscallConn: %v", err)
	}
	var v int
	var serr error
	if err := raw.Control(func(fd uintptr) {
		v, serr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR)
	}); err != nil {
		t.Fatalf("Control: %v", err)
	}
	if serr != nil {
		t.Fatalf("getsockopt: %v", serr)
	}
	return v
}

func TestReuseAddressesOption(t *testing.T) {
	p := newTestProvider(t)

	tests := []struct {
		name   string
		enable bool
		want   bool
	}{
		{"enabled", true, true},
		{"disabled", false, false},
	}
	for _, tt := range tests {
		t.Run("tcp "+tt.name, func(t *testing.T) {
			f, err := p.CreateTCPServer(executor.Goroutine, echo[channels.TCPChannel](), &net.TCPAddr{IP: loopback})
			if err != nil {
				t.Fatalf("CreateTCPServer: %v", err)
			}
			if err := factory.Set(f, channels.ReuseAddresses, tt.enable); err != nil {
				t.Fatalf("set option: %v", err)
			}
			srv, err := f.Create(testContext(t))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			defer srv.Close()
			if got := reuseAddr(t, srv.(*tcpServer).listeners[0]) != 0; got != tt.want {
				t.Errorf("SO_REUSEADDR = %v, want %v", got, tt.want)
			}
		})

		t.Run("udp "+tt.name, func(t *testing.T) {
			f, err := p.CreateUDPServer(executor.Goroutine, false, channels.Shared[channels.UDPChannel](channels.HandlerFuncs[channels.UDPChannel]{}), &net.UDPAddr{IP: loopback})
			if err != nil {
				t.Fatalf("CreateUDPServer: %v", err)
			}
			if err := factory.Set(f, channels.ReuseAddresses, tt.enable); err != nil {
				t.Fatalf("set option: %v", err)
			}
			srv, err := f.Create(testContext(t))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			defer srv.Close()
			if got := reuseAddr(t, srv.(*udpServer).channels[0].UDPConn) != 0; got != tt.want {
				t.Errorf("SO_REUSEADDR = %v, want %v", got, tt.want)
			}
		})
	}

	acceptor, err := p.CreateTCPAcceptor(executor.Goroutine)
	if err != nil {
		t.Fatalf("CreateTCPAcceptor: %v", err)
	}
	if err := factory.Set(acceptor, channels.ReuseAddresses, true); err != nil {
		t.Errorf("expected the acceptor to accept reuse_addresses, got %v", err)
	}
}
