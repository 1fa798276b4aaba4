package dialer

import (
	"context"
	"io"
	"net"

	"cdr.dev/slog/v3"
	"github.com/hashicorp/go-multierror"

	"github.com/frankli0324/proxyget/internal/http"
)

func (d *CoreDialer) netDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   d.Timeout,
		KeepAlive: d.KeepAlive,
		Control:   d.control,
	}
}

// Dial resolves host:port and connects to the candidates in order,
// returning the first that succeeds. each candidate is tried exactly once.
func (d *CoreDialer) Dial(ctx context.Context, host, port string) (io.ReadWriteCloser, error) {
	hp := net.JoinHostPort(host, port)
	lookup := d.Resolve
	if d.Lookup != nil {
		lookup = d.Lookup
	}
	addrs, err := lookup(ctx, host, port)
	if err != nil {
		return nil, http.Wrap(http.ConnectionFailed, "resolve "+hp, err)
	}
	if len(addrs) == 0 {
		return nil, http.Errorf(http.ConnectionFailed, "resolve "+hp, "no candidate addresses")
	}

	dialer := d.netDialer()
	var errs *multierror.Error
	for _, addr := range addrs {
		c, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			d.Logger.Debug(ctx, "connected", slog.F("host", hp), slog.F("addr", addr))
			return newConn(c, d.Logger), nil
		}
		d.Logger.Debug(ctx, "candidate failed", slog.F("addr", addr), slog.Error(err))
		errs = multierror.Append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &http.Error{Kind: http.ConnectionFailed, Op: "dial " + hp, Err: errs.ErrorOrNil()}
}
