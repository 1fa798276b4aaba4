//go:build !unix

package dialer

import (
	"syscall"
)

func (d *CoreDialer) control(_, _ string, _ syscall.RawConn) error {
	return nil
}
