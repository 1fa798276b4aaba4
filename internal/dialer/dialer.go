package dialer

import (
	"context"
	"io"
	"time"

	"cdr.dev/slog/v3"
)

// Dialers handle pretty much everything related to the actual connection,
// including resolving the proxy host, trying candidates, socket options, etc.
type Dialer interface {
	// Dial returns a connected stream to host:port. the stream is owned by
	// the caller and must be closed.
	Dial(ctx context.Context, host, port string) (io.ReadWriteCloser, error)
	Unwrap() Dialer
}

type CoreDialer struct {
	ResolveConfig *ResolveConfig
	// Lookup replaces [CoreDialer.Resolve] when set. it must return the
	// candidate addresses as host:port, in the order they are tried.
	Lookup func(ctx context.Context, host, port string) ([]string, error)

	Timeout   time.Duration // per candidate, zero means no timeout
	KeepAlive time.Duration // negative disables keep-alive probes

	// ReceiveBufferSize sets SO_RCVBUF on unix platforms when positive.
	ReceiveBufferSize int

	Logger slog.Logger
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		ResolveConfig:     d.ResolveConfig.Clone(),
		Lookup:            d.Lookup,
		Timeout:           d.Timeout,
		KeepAlive:         d.KeepAlive,
		ReceiveBufferSize: d.ReceiveBufferSize,
		Logger:            d.Logger,
	}
}

func (d *CoreDialer) Unwrap() Dialer {
	return nil
}
