package http

import (
	"net/http"

	"github.com/frankli0324/proxyget/internal"
	ihttp "github.com/frankli0324/proxyget/internal/http"
)

type Client = internal.Client
type Header = http.Header
type Target = ihttp.Target
type Response = ihttp.Response

type Handler = internal.Handler
type Middleware = internal.Middleware

const DefaultMaxRedirects = internal.DefaultMaxRedirects

// ParseURL decomposes a URL into protocol, host, port and path. The
// protocol defaults to "http" and the port to "80".
var ParseURL = ihttp.ParseURL

// EncodeCredentials is the base64 encoding used for Basic proxy auth.
var EncodeCredentials = ihttp.EncodeCredentials

// success policies for [Client.IsSuccess]
var (
	StatusOK          = ihttp.StatusOK
	Any2xx            = ihttp.Any2xx
	LiteralStatusLine = ihttp.LiteralStatusLine
)
