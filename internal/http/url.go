package http

import (
	"strings"
)

// ParseURL splits raw into protocol, host, port and path in a single
// left-to-right scan. Only host is required:
//
//	host.com               -> http, host.com, 80, ""
//	http://h:8080/a/b#frag -> http, h, 8080, a/b
//
// the leading slash of the path and any fragment are dropped. raw is not
// modified; the returned fields are substrings of it.
func ParseURL(raw string) (Target, error) {
	t := Target{Protocol: DefaultProtocol, Port: DefaultPort}
	if raw == "" {
		return t, Errorf(MalformedURL, "parse url", "empty url")
	}

	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		t.Protocol, rest = rest[:i], rest[i+3:]
	}

	i := strings.IndexAny(rest, ":/#")
	if i < 0 {
		i = len(rest)
	}
	t.Host, rest = rest[:i], rest[i:]
	if t.Host == "" {
		return t, Errorf(MalformedURL, "parse url", "empty host in %q", raw)
	}

	if strings.HasPrefix(rest, ":") {
		rest = rest[1:]
		i = strings.IndexAny(rest, "/#")
		if i < 0 {
			i = len(rest)
		}
		t.Port, rest = rest[:i], rest[i:]
	}

	if strings.HasPrefix(rest, "/") {
		rest = rest[1:]
		i = strings.IndexByte(rest, '#')
		if i < 0 {
			i = len(rest)
		}
		t.Path = rest[:i]
	}
	return t, nil
}

// ResolveLocation turns a Location header value into the next hop.
// Values starting with "/" stay on base's host and port.
func ResolveLocation(base Target, location string) (Target, error) {
	if strings.HasPrefix(location, "/") && !strings.HasPrefix(location, "//") {
		next := base
		next.Path = location[1:]
		if i := strings.IndexByte(next.Path, '#'); i >= 0 {
			next.Path = next.Path[:i]
		}
		return next, nil
	}
	return ParseURL(location)
}
