package dialer

import (
	"context"
	"net"
)

type ResolveConfig struct {
	CustomDNSServer string
	Network         string            // one of "ip4", "ip6", default is "ip"
	StaticHosts     map[string]string // resembles /etc/hosts
}

func (c *ResolveConfig) Clone() *ResolveConfig {
	if c == nil {
		return nil
	}
	hosts := make(map[string]string, len(c.StaticHosts))
	for k, v := range c.StaticHosts {
		hosts[k] = v
	}
	return &ResolveConfig{
		CustomDNSServer: c.CustomDNSServer,
		Network:         c.Network,
		StaticHosts:     hosts,
	}
}

func (c *ResolveConfig) network() string {
	if c == nil || c.Network == "" {
		return "ip"
	}
	return c.Network
}

func (c *ResolveConfig) dnsServer() string {
	if c == nil {
		return ""
	}
	return c.CustomDNSServer
}

// this type should not be used outside this file.
// prevents non-custom DNS server contexts to iterate through all keys
type dnsServerCtx struct {
	context.Context
	server string
}

var dnsServerCtxKey = &dnsServerCtx{nil, "dns-server"} // non-nil pointer to any object, definitely unique

func (c dnsServerCtx) Value(key interface{}) interface{} {
	if key == dnsServerCtxKey {
		return c.server
	}
	return c.Context.Value(key)
}

var zeroDialer net.Dialer

var customServerResolver = net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
		if v, ok := ctx.Value(dnsServerCtxKey).(string); ok && v != "" {
			return zeroDialer.DialContext(ctx, network, v)
		}
		return zeroDialer.DialContext(ctx, network, address)
	},
}

// Resolve returns the ordered candidate addresses for host:port.
// static hosts and IP literals skip DNS entirely.
func (d *CoreDialer) Resolve(ctx context.Context, host, port string) ([]string, error) {
	cfg := d.ResolveConfig
	if cfg != nil {
		if static, ok := cfg.StaticHosts[host]; ok {
			host = static
		}
	}
	ctx = dnsServerCtx{ctx, cfg.dnsServer()}

	portNum, err := customServerResolver.LookupPort(ctx, "tcp", port)
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else if ips, err = d.LookupIPServer(ctx, cfg.network(), host, cfg.dnsServer()); err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		if !matchNetwork(cfg.network(), ip) {
			continue
		}
		addrs = append(addrs, (&net.TCPAddr{IP: ip, Port: portNum}).String())
	}
	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no suitable address", Name: host, IsNotFound: true}
	}
	return addrs, nil
}

func matchNetwork(network string, ip net.IP) bool {
	switch network {
	case "ip4":
		return ip.To4() != nil
	case "ip6":
		return ip.To4() == nil
	}
	return true
}

// LookupIPServer performs DNS lookup for a host on a custom dns server,
// it calls [net.Resolver.LookupIP] with a Go Resolver behind the scenes.
// This part of logic may be reused when wrapping *[CoreDialer] into
// a new custom [Dialer]
func (d *CoreDialer) LookupIPServer(ctx context.Context, network, host, dns string) ([]net.IP, error) {
	return customServerResolver.LookupIP(dnsServerCtx{ctx, dns}, network, host)
}
