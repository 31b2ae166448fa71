//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package nio

import (
	"syscall"

	"github.com/unbreakablehf/xnio/factory"
)

// No address-reuse control here: ReuseAddresses stays an unknown option.
var reuseOptions []factory.Key

func reuseAddrControl(bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
