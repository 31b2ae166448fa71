//go:build linux || darwin || freebsd || netbsd || openbsd

package nio

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/factory"
)

var reuseOptions = []factory.Key{channels.ReuseAddresses}

// reuseAddrControl sets SO_REUSEADDR before the socket is bound.
func reuseAddrControl(enable bool) func(network, address string, c syscall.RawConn) error {
	v := 0
	if enable {
		v = 1
	}
	return func(_, _ string, c syscall.RawConn) error {
		var serr error
		if err := c.Control(func(fd uintptr) {
			serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, v)
		}); err != nil {
			return err
		}
		return serr
	}
}
