package dialer

import (
	"github.com/frankli0324/proxyget/internal/dialer"
)

// Dialers are responsible for creating the underlying streams that proxy
// requests are written to and responses are read from, for example opening
// a raw TCP connection to the proxy.
//
// A Dialer MUST NOT hold active connection states: every request opens its
// own stream and closes it afterwards, so a Dialer must be able to be swapped
// out from a [Client] without pain. It SHOULD hold the connection related
// configs like [ResolveConfig] or timeouts.
type Dialer = dialer.Dialer

// CoreDialer is the default implementation of the [Dialer] interface. It would
// be used by a zero value [Client]. It resolves a host to an ordered list of
// candidate addresses and connects to the first one that accepts.
type CoreDialer = dialer.CoreDialer

type ProxyConfig = dialer.ProxyConfig

// ResolveConfig controls how the proxy host is turned into candidate
// addresses:
//
//  1. StaticHosts pins a proxy hostname to a fixed address
//  2. CustomDNSServer queries the given "ip:port" server instead of the
//     one from the system configuration (e.g. /etc/resolv.conf)
//  3. Network restricts candidates to "ip4" or "ip6"
//
// lookups always go through the pure Go resolver, whose [net.Resolver.Dial]
// hook is what redirects queries to a custom server.
type ResolveConfig = dialer.ResolveConfig

// DialProxy connects a [Dialer] to the proxy described by a [ProxyConfig].
var DialProxy = dialer.DialProxy
