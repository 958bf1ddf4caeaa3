//go:build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import "syscall"

// listenControl is a no-op on platforms without the tuning hooks.
func listenControl(network, address string, c syscall.RawConn) error {
	return nil
}
