package dialer

import (
	"context"
	"io"
	"net"

	"github.com/frankli0324/proxyget/internal/http"
)

// ProxyConfig describes the forward proxy every request is sent through.
type ProxyConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func (c *ProxyConfig) Clone() *ProxyConfig {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (c *ProxyConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Authorization is the Proxy-Authorization header value.
func (c *ProxyConfig) Authorization() string {
	return http.BasicAuth(c.Username, c.Password)
}

// DialProxy connects d to the proxy described by cfg.
// This part of logic may be reused when wrapping *[CoreDialer] into
// a new custom [Dialer]
func DialProxy(ctx context.Context, d Dialer, cfg *ProxyConfig) (io.ReadWriteCloser, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, http.Errorf(http.ConnectionFailed, "dial proxy", "no proxy configured")
	}
	port := cfg.Port
	if port == "" {
		port = http.DefaultPort
	}
	return d.Dial(ctx, cfg.Host, port)
}
