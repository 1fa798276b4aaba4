package transport

import (
	"bufio"
	"bytes"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/proxyget/internal/http"
)

// DefaultBufferLimit bounds the receive buffer of a single response.
const DefaultBufferLimit = 100 << 20

type HTTP1 struct {
	// BufferLimit caps the bytes held for one response, header block
	// included. zero means DefaultBufferLimit.
	BufferLimit int
}

func (t HTTP1) limit() int {
	if t.BufferLimit <= 0 {
		return DefaultBufferLimit
	}
	return t.BufferLimit
}

// WriteProxyRequest writes a GET for target in absolute-URI form, as
// required when talking to a forward proxy, in a single Write. e.g.:
//
//	GET http://example.com/page HTTP/1.1\r\n
//	Host: example.com:80\r\n
//	Proxy-Authorization: Basic YWxpY2U6c2VjcmV0\r\n
//	Connection: close\r\n
//	\r\n
func (t HTTP1) WriteProxyRequest(w io.Writer, target http.Target, authorization string) error {
	if !httpguts.ValidHostHeader(target.HostPort()) {
		return http.Errorf(http.MalformedURL, "write request", "invalid host %q", target.HostPort())
	}
	if strings.ContainsAny(target.Path, " \r\n\t") || !httpguts.ValidHeaderFieldValue(target.Path) {
		return http.Errorf(http.MalformedURL, "write request", "invalid path %q", target.Path)
	}
	if !httpguts.ValidHeaderFieldValue(authorization) {
		return http.Errorf(http.MalformedURL, "write request", "invalid proxy authorization")
	}

	req := bytebufferpool.Get()
	defer bytebufferpool.Put(req)

	req.WriteString("GET ")
	req.WriteString(target.RequestURI())
	req.WriteString(" HTTP/1.1\r\n")
	req.WriteString("Host: ")
	req.WriteString(target.HostPort())
	req.WriteString("\r\n")
	req.WriteString("Proxy-Authorization: ")
	req.WriteString(authorization)
	req.WriteString("\r\n")
	req.WriteString("Connection: close\r\n")
	req.WriteString("\r\n")

	if _, err := w.Write(req.B); err != nil {
		return http.Wrap(http.IOError, "write request", err)
	}
	return nil
}

// ReadResponse frames one response out of r. the body ends either after
// Content-Length bytes or when r reports io.EOF.
func (t HTTP1) ReadResponse(r io.Reader) (*http.Response, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.Reset()

	f := newFramer(t.limit())
	for empty := 0; ; {
		if err := f.grow(buf); err != nil {
			return nil, err
		}
		n, err := r.Read(buf.B[len(buf.B):f.window(buf.B)])
		buf.B = buf.B[:len(buf.B)+n]
		if n > 0 {
			empty = 0
			if ferr := f.advance(buf.B); ferr != nil {
				return nil, ferr
			}
			if f.done {
				return f.finalize(buf.B), nil
			}
		}
		switch {
		case err == io.EOF:
			if f.mode == connectionDelimited {
				f.done = true
				return f.finalize(buf.B), nil
			}
			if f.mode == awaitingHeaders {
				return nil, http.Errorf(http.UnexpectedClose, "read response", "connection closed before end of headers")
			}
			return nil, http.Errorf(http.UnexpectedClose, "read response",
				"connection closed after %d of %d body bytes", len(buf.B)-f.bodyStart, f.remaining)
		case err != nil:
			return nil, http.Wrap(http.IOError, "read response", err)
		case n == 0:
			if empty++; empty >= 100 {
				return nil, http.Wrap(http.IOError, "read response", io.ErrNoProgress)
			}
		}
	}
}

// parseHead parses the status line and header fields of a header block,
// which must not include the terminating blank line.
func parseHead(block []byte, resp *http.Response) error {
	tp := textproto.NewReader(bufio.NewReader(io.MultiReader(
		bytes.NewReader(block), strings.NewReader("\r\n\r\n"),
	)))

	line, err := tp.ReadLine()
	if err != nil {
		return http.Wrap(http.InvalidResponse, "read status line", err)
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok {
		return http.Errorf(http.InvalidResponse, "read status line", "malformed HTTP response %q", line)
	}
	resp.Proto = proto
	resp.Status = strings.TrimLeft(status, " ")

	statusCode, _, _ := strings.Cut(resp.Status, " ")
	if len(statusCode) != 3 {
		return http.Errorf(http.InvalidResponse, "read status line", "malformed HTTP status code %q", statusCode)
	}
	resp.StatusCode, err = strconv.Atoi(statusCode)
	if err != nil || resp.StatusCode < 0 {
		return http.Errorf(http.InvalidResponse, "read status line", "malformed HTTP status code %q", statusCode)
	}

	resp.Header = http.Header{}
	for {
		line, err := tp.ReadLine()
		if err != nil && err != io.EOF {
			return http.Wrap(http.InvalidResponse, "read headers", err)
		}
		if line == "" {
			return nil
		}
		// folded continuations and lines without a colon are dropped,
		// the block is already known to end in a blank line.
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if key = textproto.TrimString(key); !ok || key == "" {
			continue
		}
		resp.Header.Add(key, textproto.TrimString(value))
	}
}

// contentLength returns -1 when the body is delimited by connection close.
func contentLength(resp *http.Response) (int64, error) {
	if te := resp.Header.Get("Transfer-Encoding"); te != "" && !strings.EqualFold(te, "identity") {
		return 0, http.Errorf(http.UnsupportedEncoding, "read headers", "transfer-encoding %q", te)
	}
	switch resp.StatusCode {
	case 204, 304:
		return 0, nil
	}

	contentLens := resp.Header["Content-Length"]

	// Hardening against HTTP request smuggling, taken from standard library
	if len(contentLens) > 1 {
		// Per RFC 7230 Section 3.3.2
		first := textproto.TrimString(contentLens[0])
		for _, ct := range contentLens[1:] {
			if first != textproto.TrimString(ct) {
				return 0, http.Errorf(http.InvalidResponse, "read headers",
					"message cannot contain multiple Content-Length headers; got %q", contentLens)
			}
		}

		// deduplicate Content-Length
		resp.Header.Del("Content-Length")
		resp.Header.Add("Content-Length", first)

		contentLens = resp.Header["Content-Length"]
	}

	if len(contentLens) == 0 {
		return -1, nil
	}
	n, err := strconv.ParseUint(textproto.TrimString(contentLens[0]), 10, 63)
	if err != nil {
		return 0, http.Errorf(http.InvalidResponse, "read headers", "bad Content-Length %q", contentLens[0])
	}
	return int64(n), nil
}
