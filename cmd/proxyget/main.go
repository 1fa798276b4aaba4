package main

import (
	"errors"
	"fmt"
	"os"

	phttp "github.com/frankli0324/proxyget"
)

func main() {
	p := &proxyget{}
	err := p.execute(p.command().Invoke().WithOS())
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "proxyget:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode gives every failure kind its own status.
func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	switch phttp.KindOf(err) {
	case phttp.MalformedURL:
		return 3
	case phttp.UnsupportedProtocol:
		return 4
	case phttp.ConnectionFailed:
		return 5
	case phttp.IOError:
		return 6
	case phttp.BufferOverflow:
		return 7
	case phttp.UnexpectedClose:
		return 8
	case phttp.RequestFailed:
		return 9
	case phttp.TooManyRedirects:
		return 10
	case phttp.UnsupportedEncoding:
		return 11
	case phttp.InvalidResponse:
		return 12
	}
	return 1
}
