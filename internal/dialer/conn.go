package dialer

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"

	"cdr.dev/slog/v3"
)

// conn scopes a dialed stream to a single request. Close is idempotent and
// the byte counters are reported once the stream is released.
type conn struct {
	net.Conn
	logger slog.Logger

	isClosed      atomic.Bool
	read, written atomic.Int64
}

func newConn(c net.Conn, logger slog.Logger) *conn {
	return &conn{Conn: c, logger: logger}
}

func (c *conn) Raw() net.Conn {
	return c.Conn
}

func (c *conn) Available() bool {
	return !c.isClosed.Load()
}

func (c *conn) Write(p []byte) (n int, err error) {
	n, err = c.Conn.Write(p)
	c.written.Add(int64(n))
	if err != nil && !errors.Is(err, io.EOF) {
		c.logger.Debug(context.Background(), "error on write", slog.F("remote", c.RemoteAddr().String()), slog.Error(err))
	}
	return
}

func (c *conn) Read(p []byte) (n int, err error) {
	n, err = c.Conn.Read(p)
	c.read.Add(int64(n))
	if err != nil && !errors.Is(err, io.EOF) && c.Available() {
		c.logger.Debug(context.Background(), "error on read", slog.F("remote", c.RemoteAddr().String()), slog.Error(err))
	}
	return
}

func (c *conn) Close() error {
	if !c.isClosed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.Conn.Close()
	c.logger.Debug(context.Background(), "connection closed",
		slog.F("remote", c.RemoteAddr().String()),
		slog.F("bytes_read", c.read.Load()),
		slog.F("bytes_written", c.written.Load()),
	)
	return err
}
