package http

import (
	"net"
	"strconv"
	"strings"
)

const (
	DefaultProtocol = "http"
	DefaultPort     = "80"
)

// Target is a decomposed request URL. Path never carries its leading slash.
type Target struct {
	Protocol string
	Host     string
	Port     string
	Path     string
}

// HostPort returns the value sent in the Host header.
func (t Target) HostPort() string {
	return t.Host + ":" + t.Port
}

// RequestURI is the absolute-URI request-target sent to a forward proxy.
// The port is carried by the Host header only.
func (t Target) RequestURI() string {
	return t.Protocol + "://" + t.Host + "/" + t.Path
}

func (t Target) String() string {
	return t.Protocol + "://" + net.JoinHostPort(t.Host, t.Port) + "/" + t.Path
}

type Response struct {
	Proto      string
	Status     string
	StatusCode int

	// RawHeader is the header block as received, status line included,
	// without the terminating blank line.
	RawHeader string
	Header    Header

	// ContentLength is -1 when the body was delimited by connection close.
	ContentLength int64
	Body          []byte

	// Target is the hop that produced this response.
	Target Target
}

// BodyLength is the authoritative length of Body.
func (r *Response) BodyLength() int {
	return len(r.Body)
}

// Location returns the redirect target, if any.
func (r *Response) Location() (string, bool) {
	if r.Header == nil {
		return "", false
	}
	v, ok := r.Header["Location"]
	if !ok || len(v) == 0 {
		return "", false
	}
	return strings.TrimSpace(v[0]), true
}

// StatusOK accepts a 200 status regardless of reason phrase.
func StatusOK(r *Response) bool {
	return r.StatusCode == 200
}

// Any2xx accepts every successful status.
func Any2xx(r *Response) bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// LiteralStatusLine only accepts a header block containing "HTTP/1.1 200 OK".
func LiteralStatusLine(r *Response) bool {
	return strings.Contains(r.RawHeader, "HTTP/1.1 200 OK")
}

func (r *Response) String() string {
	return r.Proto + " " + r.Status + " (" + strconv.Itoa(len(r.Body)) + " bytes)"
}
