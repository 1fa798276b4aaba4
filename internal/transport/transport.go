package transport

import (
	"io"

	"github.com/frankli0324/proxyget/internal/http"
)

type Transport interface {
	WriteProxyRequest(w io.Writer, target http.Target, authorization string) error
	ReadResponse(r io.Reader) (*http.Response, error)
}

var _ Transport = HTTP1{}
