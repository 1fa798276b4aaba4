package transport_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/frankli0324/proxyget/internal/http"
	"github.com/frankli0324/proxyget/internal/transport"
)

var h1 = transport.HTTP1{}

func TestWriteProxyRequest(t *testing.T) {
	target, err := http.ParseURL("http://example.com/page")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h1.WriteProxyRequest(&buf, target, http.BasicAuth("alice", "secret")))
	require.Equal(t, "GET http://example.com/page HTTP/1.1\r\n"+
		"Host: example.com:80\r\n"+
		"Proxy-Authorization: Basic YWxpY2U6c2VjcmV0\r\n"+
		"Connection: close\r\n"+
		"\r\n", buf.String())
}

type countingWriter struct {
	writes int
	bytes.Buffer
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestWriteProxyRequestSingleWrite(t *testing.T) {
	w := &countingWriter{}
	require.NoError(t, h1.WriteProxyRequest(w, http.Target{Protocol: "http", Host: "h", Port: "8080"}, "Basic Og=="))
	require.Equal(t, 1, w.writes)
	require.True(t, strings.HasPrefix(w.String(), "GET http://h/ HTTP/1.1\r\nHost: h:8080\r\n"))
}

func TestWriteProxyRequestRejectsInjection(t *testing.T) {
	for name, target := range map[string]http.Target{
		"HostCRLF":  {Protocol: "http", Host: "a\r\nX-Evil: 1", Port: "80"},
		"PathSpace": {Protocol: "http", Host: "a", Port: "80", Path: "x HTTP/1.0"},
		"PathCRLF":  {Protocol: "http", Host: "a", Port: "80", Path: "x\r\n"},
	} {
		err := h1.WriteProxyRequest(io.Discard, target, "Basic Og==")
		require.True(t, errors.Is(err, http.MalformedURL), name)
	}
}

func TestWriteProxyRequestError(t *testing.T) {
	err := h1.WriteProxyRequest(errWriter{}, http.Target{Protocol: "http", Host: "h", Port: "80"}, "Basic Og==")
	require.True(t, errors.Is(err, http.IOError))
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

var respShouldBe = map[string]struct {
	data   string
	body   string
	status int
	cl     int64
}{
	"ContentLength": {
		data:   "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhelloGARBAGE",
		body:   "hello",
		status: 200,
		cl:     5,
	},
	"ContentLengthLowercase": {
		data:   "HTTP/1.1 200 OK\r\ncontent-length: 3\r\n\r\nabcdef",
		body:   "abc",
		status: 200,
		cl:     3,
	},
	"HeaderLookalikeInBody": {
		data:   "HTTP/1.1 200 OK\r\nCLHDR: 5\r\nContent-Length: 5\r\n\r\nhello\r\n\r\nmore",
		body:   "hello",
		status: 200,
		cl:     5,
	},
	"HeaderWithoutColon": {
		data:   "HTTP/1.1 200 OK\r\nX-Cache HIT\r\nContent-Length: 2\r\n\r\nok",
		body:   "ok",
		status: 200,
		cl:     2,
	},
	"FoldedHeader": {
		data:   "HTTP/1.1 200 OK\r\nX-Long: a\r\n b\r\nContent-Length: 2\r\n\r\nokay",
		body:   "ok",
		status: 200,
		cl:     2,
	},
	"ConnectionClose": {
		data:   "HTTP/1.1 200 OK\r\n\r\nabc",
		body:   "abc",
		status: 200,
		cl:     -1,
	},
	"EmptyBody": {
		data:   "HTTP/1.1 302 Found\r\nLocation: http://other/x\r\nContent-Length: 0\r\n\r\n",
		body:   "",
		status: 302,
		cl:     0,
	},
	"NoContent": {
		data:   "HTTP/1.1 204 No Content\r\n\r\n",
		body:   "",
		status: 204,
		cl:     0,
	},
	"DuplicateContentLength": {
		data:   "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 2\r\n\r\nokNOPE",
		body:   "ok",
		status: 200,
		cl:     2,
	},
}

func TestReadResponse(t *testing.T) {
	for name, cas := range respShouldBe {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			for _, r := range []io.Reader{
				strings.NewReader(tCase.data),
				iotest.OneByteReader(strings.NewReader(tCase.data)),
				iotest.HalfReader(strings.NewReader(tCase.data)),
				iotest.DataErrReader(strings.NewReader(tCase.data)),
			} {
				resp, err := h1.ReadResponse(r)
				require.NoError(t, err)
				require.Equal(t, tCase.body, string(resp.Body))
				require.Equal(t, len(tCase.body), resp.BodyLength())
				require.Equal(t, tCase.status, resp.StatusCode)
				require.Equal(t, tCase.cl, resp.ContentLength)
				require.Equal(t, "HTTP/1.1", resp.Proto)
				require.False(t, strings.HasSuffix(resp.RawHeader, "\r\n"))
			}
		})
	}
}

func TestReadResponseHeaders(t *testing.T) {
	resp, err := h1.ReadResponse(strings.NewReader(
		"HTTP/1.1 301 Moved Permanently\r\nlocation: http://other/x\r\nServer: t\r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 301 Moved Permanently\r\nlocation: http://other/x\r\nServer: t", resp.RawHeader)
	require.Equal(t, "301 Moved Permanently", resp.Status)
	loc, ok := resp.Location()
	require.True(t, ok)
	require.Equal(t, "http://other/x", loc)
}

func TestReadResponseLenientHeaders(t *testing.T) {
	resp, err := h1.ReadResponse(strings.NewReader(
		"HTTP/1.1 302 Found\r\nX-Cache HIT\r\n: empty\r\nVia: proxy\r\n  folded\r\nlocation:http://other/x \r\n\r\n"))
	require.NoError(t, err)
	require.Equal(t, 302, resp.StatusCode)
	require.Equal(t, "proxy", resp.Header.Get("Via"))
	require.Equal(t, "http://other/x", resp.Header.Get("Location"))
	require.Len(t, resp.Header, 2)
	require.Contains(t, resp.RawHeader, "X-Cache HIT")
}

// stalled keeps returning data without ever ending the header block.
type stalled struct{}

func (stalled) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'a'
	}
	return len(p), nil
}

var respShouldFail = map[string]struct {
	r    io.Reader
	kind http.Kind
}{
	"CloseBeforeHeaders": {
		r:    strings.NewReader("HTTP/1.1 200 OK\r\nContent-Le"),
		kind: http.UnexpectedClose,
	},
	"CloseWithoutData": {
		r:    strings.NewReader(""),
		kind: http.UnexpectedClose,
	},
	"ShortBody": {
		r:    strings.NewReader("HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc"),
		kind: http.UnexpectedClose,
	},
	"Chunked": {
		r:    strings.NewReader("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nabc\r\n0\r\n\r\n"),
		kind: http.UnsupportedEncoding,
	},
	"ConflictingContentLength": {
		r:    strings.NewReader("HTTP/1.1 200 OK\r\nContent-Length: 1\r\nContent-Length: 2\r\n\r\nab"),
		kind: http.InvalidResponse,
	},
	"BadContentLength": {
		r:    strings.NewReader("HTTP/1.1 200 OK\r\nContent-Length: five\r\n\r\nhello"),
		kind: http.InvalidResponse,
	},
	"BadStatusLine": {
		r:    strings.NewReader("garbage\r\n\r\n"),
		kind: http.InvalidResponse,
	},
	"ReadError": {
		r:    io.MultiReader(strings.NewReader("HTTP/1.1 200 OK\r\n"), iotest.ErrReader(io.ErrClosedPipe)),
		kind: http.IOError,
	},
	"NeverEndingHeaders": {
		r:    stalled{},
		kind: http.BufferOverflow,
	},
	"ContentLengthOverLimit": {
		r:    strings.NewReader("HTTP/1.1 200 OK\r\nContent-Length: 1000000\r\n\r\nabc"),
		kind: http.BufferOverflow,
	},
}

func TestReadResponseErrors(t *testing.T) {
	small := transport.HTTP1{BufferLimit: 64 << 10}
	for name, cas := range respShouldFail {
		tCase := cas
		t.Run(name, func(t *testing.T) {
			resp, err := small.ReadResponse(tCase.r)
			require.Nil(t, resp)
			require.Error(t, err)
			require.True(t, errors.Is(err, tCase.kind), "got %v", err)
		})
	}
}

func TestReadResponseBodyOverLimit(t *testing.T) {
	small := transport.HTTP1{BufferLimit: 1024}
	data := "HTTP/1.1 200 OK\r\n\r\n" + strings.Repeat("x", 2048)
	_, err := small.ReadResponse(strings.NewReader(data))
	require.True(t, errors.Is(err, http.BufferOverflow))

	data = "HTTP/1.1 200 OK\r\n\r\n" + strings.Repeat("x", 512)
	resp, err := small.ReadResponse(iotest.OneByteReader(strings.NewReader(data)))
	require.NoError(t, err)
	require.Equal(t, 512, resp.BodyLength())
}

func TestReadResponseLargeBody(t *testing.T) {
	body := bytes.Repeat([]byte("0123456789"), 100000)
	data := append([]byte("HTTP/1.1 200 OK\r\n\r\n"), body...)
	resp, err := h1.ReadResponse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, body, resp.Body)
}
