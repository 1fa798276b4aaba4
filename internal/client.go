package internal

import (
	"context"
	"time"

	"cdr.dev/slog/v3"

	"github.com/frankli0324/proxyget/internal/dialer"
	"github.com/frankli0324/proxyget/internal/http"
	"github.com/frankli0324/proxyget/internal/transport"
)

// DefaultMaxRedirects is used when Client.MaxRedirects is zero.
const DefaultMaxRedirects = 10

type Handler = func(ctx context.Context, target http.Target) (*http.Response, error)
type Middleware func(next Handler) Handler

type Client struct {
	Proxy *dialer.ProxyConfig

	// MaxRedirects is the number of Location hops Get follows. zero means
	// DefaultMaxRedirects, negative means none.
	MaxRedirects int
	// BufferLimit caps a single response, see [transport.HTTP1].
	BufferLimit int
	// ReadTimeout bounds each hop from the first write to the end of the
	// body. zero means no deadline.
	ReadTimeout time.Duration
	// IsSuccess decides whether Get stops at a response. nil means
	// [http.StatusOK].
	IsSuccess func(*http.Response) bool

	Logger slog.Logger

	middlewares []Middleware
	dialer      dialer.Dialer
}

var defaultDialer = &dialer.CoreDialer{}

// Use appends mw to the end of the chain. The last "Use"d mw executes first
func (c *Client) Use(mws ...Middleware) {
	c.middlewares = append(c.middlewares, mws...)
}

func (c *Client) getDialer() dialer.Dialer {
	if c.dialer != nil {
		return c.dialer
	}
	return defaultDialer
}

// UseDialer replaces the dialer with the result of f, which receives the
// current one so it can be wrapped.
func (c *Client) UseDialer(f func(dialer.Dialer) dialer.Dialer) {
	c.dialer = f(c.getDialer())
}

// UseCoreDialer lets f configure the *[dialer.CoreDialer] at the bottom of
// the dialer chain. the default dialer is cloned, never modified.
func (c *Client) UseCoreDialer(f func(cd *dialer.CoreDialer) dialer.Dialer) {
	if c.dialer == nil {
		cd := defaultDialer.Clone()
		cd.Logger = c.Logger.Named("dialer")
		c.dialer = f(cd)
		return
	}
	for d := c.dialer; d != nil; d = d.Unwrap() {
		if cd, ok := d.(*dialer.CoreDialer); ok {
			if res := f(cd); d == c.dialer {
				c.dialer = res
			}
			return
		}
	}
}

// Fetch performs exactly one proxied GET for target without following
// redirects. every call opens and closes its own connection.
func (c *Client) Fetch(ctx context.Context, target http.Target) (*http.Response, error) {
	next := c.roundTrip
	for _, mw := range c.middlewares {
		next = mw(next)
	}
	return next(ctx, target)
}

func (c *Client) roundTrip(ctx context.Context, target http.Target) (*http.Response, error) {
	if target.Protocol != http.DefaultProtocol {
		return nil, http.Errorf(http.UnsupportedProtocol, "fetch", "%q, only http is supported", target.Protocol)
	}

	conn, err := dialer.DialProxy(ctx, c.getDialer(), c.Proxy)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	// unblocks a pending read once ctx is done
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if c.ReadTimeout > 0 {
		if dl, ok := conn.(interface{ SetDeadline(time.Time) error }); ok {
			if err := dl.SetDeadline(time.Now().Add(c.ReadTimeout)); err != nil {
				return nil, http.Wrap(http.IOError, "set deadline", err)
			}
		}
	}

	t := transport.HTTP1{BufferLimit: c.BufferLimit}
	c.Logger.Debug(ctx, "sending request",
		slog.F("proxy", c.Proxy.Addr()),
		slog.F("request_uri", target.RequestURI()),
		slog.F("host", target.HostPort()),
	)
	if err := t.WriteProxyRequest(conn, target, c.Proxy.Authorization()); err != nil {
		return nil, c.ctxErr(ctx, err)
	}
	resp, err := t.ReadResponse(conn)
	if err != nil {
		return nil, c.ctxErr(ctx, err)
	}
	resp.Target = target
	c.Logger.Debug(ctx, "received response",
		slog.F("status", resp.Status),
		slog.F("headers", resp.RawHeader),
		slog.F("body_length", resp.BodyLength()),
	)
	return resp, nil
}

// ctxErr prefers the context's error over the one caused by closing the
// stream under a pending read.
func (c *Client) ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return http.Wrap(http.KindOf(err), "fetch", cerr)
	}
	return err
}

func (c *Client) maxRedirects() int {
	switch {
	case c.MaxRedirects == 0:
		return DefaultMaxRedirects
	case c.MaxRedirects < 0:
		return 0
	}
	return c.MaxRedirects
}

func (c *Client) isSuccess(resp *http.Response) bool {
	if c.IsSuccess != nil {
		return c.IsSuccess(resp)
	}
	return http.StatusOK(resp)
}

// Get fetches rawURL, following Location headers until a response is
// accepted by IsSuccess. the returned response's Target is the final hop.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	target, err := http.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	for hops := 0; ; hops++ {
		resp, err := c.Fetch(ctx, target)
		if err != nil {
			return nil, err
		}
		if c.isSuccess(resp) {
			return resp, nil
		}
		loc, ok := resp.Location()
		if !ok {
			return nil, http.Errorf(http.RequestFailed, "get "+target.String(), "server responded %q", resp.Status)
		}
		if hops >= c.maxRedirects() {
			return nil, http.Errorf(http.TooManyRedirects, "get "+target.String(), "stopped after %d redirects", hops)
		}
		next, err := http.ResolveLocation(target, loc)
		if err != nil {
			return nil, err
		}
		c.Logger.Info(ctx, "following redirect",
			slog.F("status", resp.Status),
			slog.F("from", target.String()),
			slog.F("to", next.String()),
		)
		target = next
	}
}
