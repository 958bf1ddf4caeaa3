//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// listenControl applies SO_REUSEADDR before bind so quick restarts do
// not trip over TIME_WAIT sockets.
func listenControl(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
