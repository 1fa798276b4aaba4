package http

import (
	ihttp "github.com/frankli0324/proxyget/internal/http"
)

// Error is returned by every operation of a [Client]. Match its Kind with
// errors.Is(err, http.ConnectionFailed) or [KindOf].
type Error = ihttp.Error
type Kind = ihttp.Kind

const (
	MalformedURL        = ihttp.MalformedURL
	UnsupportedProtocol = ihttp.UnsupportedProtocol
	ConnectionFailed    = ihttp.ConnectionFailed
	IOError             = ihttp.IOError
	BufferOverflow      = ihttp.BufferOverflow
	UnexpectedClose     = ihttp.UnexpectedClose
	RequestFailed       = ihttp.RequestFailed
	TooManyRedirects    = ihttp.TooManyRedirects
	UnsupportedEncoding = ihttp.UnsupportedEncoding
	InvalidResponse     = ihttp.InvalidResponse
)

var KindOf = ihttp.KindOf
