//go:build unix

package dialer

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func (d *CoreDialer) control(_, _ string, c syscall.RawConn) error {
	if d.ReceiveBufferSize <= 0 {
		return nil
	}
	var serr error
	if err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, d.ReceiveBufferSize)
	}); err != nil {
		return err
	}
	return serr
}
