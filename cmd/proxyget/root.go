package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"github.com/coder/retry"
	"github.com/coder/serpent"
	"golang.org/x/xerrors"

	phttp "github.com/frankli0324/proxyget"
	"github.com/frankli0324/proxyget/internal/transport"
)

const usage = "url proxy_ip proxy_port proxy_username proxy_password output_html_path output_logo_path"

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() + "\nusage: proxyget " + usage }
func (e *usageError) Unwrap() error { return e.err }

type proxyget struct {
	maxRedirects   int64
	bufferLimit    int64
	connectTimeout time.Duration
	readTimeout    time.Duration
	connectRetries int64
	logoHost       string
	logoPath       string
	success        string
	verbose        bool

	// parsed is set once flags and env have been accepted.
	parsed bool
}

func (p *proxyget) command() *serpent.Command {
	cmd := &serpent.Command{
		Use:   "proxyget " + usage,
		Short: "Fetch a page over HTTP through an authenticated forward proxy.",
		Long: "Issues a GET through the proxy with Basic credentials, follows Location " +
			"redirects and writes the final body to output_html_path. When the final host " +
			"equals --logo-host, --logo-path is fetched from it too and written to output_logo_path.",
		Middleware: p.requireArgs(7),
		Handler:    p.run,
	}
	cmd.Options = serpent.OptionSet{
		{
			Flag:        "max-redirects",
			Env:         "PROXYGET_MAX_REDIRECTS",
			Default:     strconv.Itoa(phttp.DefaultMaxRedirects),
			Description: "Maximum number of Location redirects to follow. 0 disables following.",
			Value:       serpent.Int64Of(&p.maxRedirects),
		},
		{
			Flag:        "buffer-limit",
			Env:         "PROXYGET_BUFFER_LIMIT",
			Default:     strconv.Itoa(transport.DefaultBufferLimit),
			Description: "Maximum size in bytes of a single response, headers included.",
			Value:       serpent.Int64Of(&p.bufferLimit),
		},
		{
			Flag:        "connect-timeout",
			Env:         "PROXYGET_CONNECT_TIMEOUT",
			Default:     "0s",
			Description: "Timeout for connecting to each proxy address. 0 waits forever.",
			Value:       serpent.DurationOf(&p.connectTimeout),
		},
		{
			Flag:        "read-timeout",
			Env:         "PROXYGET_READ_TIMEOUT",
			Default:     "0s",
			Description: "Deadline for each request and its response. 0 waits forever.",
			Value:       serpent.DurationOf(&p.readTimeout),
		},
		{
			Flag:        "connect-retries",
			Env:         "PROXYGET_CONNECT_RETRIES",
			Default:     "0",
			Description: "How many times to retry a request whose proxy connection failed.",
			Value:       serpent.Int64Of(&p.connectRetries),
		},
		{
			Flag:        "logo-host",
			Env:         "PROXYGET_LOGO_HOST",
			Default:     "info.in2p3.fr",
			Description: "Host on which the logo is fetched after the page.",
			Value:       serpent.StringOf(&p.logoHost),
		},
		{
			Flag:        "logo-path",
			Env:         "PROXYGET_LOGO_PATH",
			Default:     "cc.gif",
			Description: "Path of the logo on --logo-host, without leading slash.",
			Value:       serpent.StringOf(&p.logoPath),
		},
		{
			Flag:        "success",
			Env:         "PROXYGET_SUCCESS",
			Default:     "200",
			Description: "Which responses end the redirect loop: 200, 2xx or literal (exact \"HTTP/1.1 200 OK\").",
			Value:       serpent.EnumOf(&p.success, "200", "2xx", "literal"),
		},
		{
			Flag:          "verbose",
			FlagShorthand: "v",
			Env:           "PROXYGET_VERBOSE",
			Description:   "Log request and response headers of every hop.",
			Value:         serpent.BoolOf(&p.verbose),
		},
	}
	return cmd
}

// execute runs inv and reports anything rejected before the handler,
// such as unknown flags or bad values, as a usage error.
func (p *proxyget) execute(inv *serpent.Invocation) error {
	err := inv.Run()
	if err != nil && !p.parsed {
		var ue *usageError
		if !errors.As(err, &ue) {
			err = &usageError{err}
		}
	}
	return err
}

func (p *proxyget) requireArgs(n int) serpent.MiddlewareFunc {
	check := serpent.RequireNArgs(n)(func(*serpent.Invocation) error { return nil })
	return func(next serpent.HandlerFunc) serpent.HandlerFunc {
		return func(inv *serpent.Invocation) error {
			p.parsed = true
			if err := check(inv); err != nil {
				return &usageError{err}
			}
			return next(inv)
		}
	}
}

func (p *proxyget) client(logger slog.Logger, proxy *phttp.ProxyConfig) *phttp.Client {
	c := &phttp.Client{
		Proxy:       proxy,
		BufferLimit: int(p.bufferLimit),
		ReadTimeout: p.readTimeout,
		Logger:      logger.Named("client"),
	}
	switch {
	case p.maxRedirects == 0:
		c.MaxRedirects = -1
	default:
		c.MaxRedirects = int(p.maxRedirects)
	}
	switch p.success {
	case "2xx":
		c.IsSuccess = phttp.Any2xx
	case "literal":
		c.IsSuccess = phttp.LiteralStatusLine
	}
	c.UseCoreDialer(func(cd *phttp.CoreDialer) phttp.Dialer {
		cd.Timeout = p.connectTimeout
		cd.Logger = logger.Named("dialer")
		return cd
	})
	return c
}

func (p *proxyget) run(inv *serpent.Invocation) error {
	ctx := inv.Context()
	rawURL, htmlPath, logoPath := inv.Args[0], inv.Args[5], inv.Args[6]
	proxy := &phttp.ProxyConfig{
		Host:     inv.Args[1],
		Port:     inv.Args[2],
		Username: inv.Args[3],
		Password: inv.Args[4],
	}

	logger := slog.Make(sloghuman.Sink(inv.Stderr)).Leveled(slog.LevelInfo)
	if p.verbose {
		logger = logger.Leveled(slog.LevelDebug)
	}
	client := p.client(logger, proxy)

	resp, err := p.retrying(ctx, logger, func() (*phttp.Response, error) {
		return client.Get(ctx, rawURL)
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(htmlPath, resp.Body, 0o644); err != nil {
		return xerrors.Errorf("write html: %w", err)
	}
	logger.Info(ctx, "saved page",
		slog.F("url", resp.Target.String()),
		slog.F("path", htmlPath),
		slog.F("bytes", resp.BodyLength()),
	)

	if resp.Target.Host != p.logoHost {
		return nil
	}
	target := resp.Target
	target.Path = p.logoPath
	logo, err := p.retrying(ctx, logger, func() (*phttp.Response, error) {
		return client.Fetch(ctx, target)
	})
	if err != nil {
		return xerrors.Errorf("fetch logo: %w", err)
	}
	if err := os.WriteFile(logoPath, logo.Body, 0o644); err != nil {
		return xerrors.Errorf("write logo: %w", err)
	}
	logger.Info(ctx, "saved logo",
		slog.F("url", target.String()),
		slog.F("path", logoPath),
		slog.F("bytes", logo.BodyLength()),
	)
	return nil
}

// retrying repeats do while the proxy connection fails, at most
// --connect-retries more times. any other error is returned as is.
func (p *proxyget) retrying(ctx context.Context, logger slog.Logger, do func() (*phttp.Response, error)) (*phttp.Response, error) {
	var err error
	attempt := int64(0)
	for r := retry.New(250*time.Millisecond, 5*time.Second); r.Wait(ctx); attempt++ {
		var resp *phttp.Response
		resp, err = do()
		if err == nil || !errors.Is(err, phttp.ConnectionFailed) || attempt >= p.connectRetries {
			return resp, err
		}
		logger.Warn(ctx, "proxy connection failed, retrying",
			slog.F("attempt", attempt+1),
			slog.F("max_retries", p.connectRetries),
			slog.Error(err),
		)
	}
	if err == nil {
		err = ctx.Err()
	}
	return nil, err
}
