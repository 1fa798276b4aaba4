package transport

import (
	"bytes"

	"github.com/valyala/bytebufferpool"

	"github.com/frankli0324/proxyget/internal/http"
)

type framingMode int

const (
	awaitingHeaders framingMode = iota
	lengthDelimited
	connectionDelimited
)

var headerDelim = []byte("\r\n\r\n")

const minReadSize = 4 << 10

// framer tracks where a response ends inside a growing receive buffer.
// the framing mode is chosen once, right after the header block is found.
type framer struct {
	limit int
	mode  framingMode
	done  bool

	scanned   int // bytes already searched for headerDelim
	bodyStart int
	remaining int64

	resp *http.Response
}

func newFramer(limit int) *framer {
	return &framer{limit: limit, bodyStart: -1}
}

// grow makes room for at least one more byte, doubling the buffer up to
// the limit.
func (f *framer) grow(buf *bytebufferpool.ByteBuffer) error {
	b := buf.B
	if len(b) >= f.limit {
		return http.Errorf(http.BufferOverflow, "read response", "response exceeds %d bytes", f.limit)
	}
	if len(b) < cap(b) {
		return nil
	}
	size := 2 * cap(b)
	if size < minReadSize {
		size = minReadSize
	}
	if size > f.limit {
		size = f.limit
	}
	nb := make([]byte, len(b), size)
	copy(nb, b)
	buf.B = nb
	return nil
}

// window is the end of the slice the next read may fill.
func (f *framer) window(b []byte) int {
	if cap(b) > f.limit {
		return f.limit
	}
	return cap(b)
}

func (f *framer) advance(b []byte) error {
	if f.mode == awaitingHeaders {
		from := f.scanned - len(headerDelim) + 1
		if from < 0 {
			from = 0
		}
		i := bytes.Index(b[from:], headerDelim)
		if i < 0 {
			f.scanned = len(b)
			return nil
		}
		i += from

		f.resp = &http.Response{RawHeader: string(b[:i])}
		if err := parseHead(b[:i], f.resp); err != nil {
			return err
		}
		cl, err := contentLength(f.resp)
		if err != nil {
			return err
		}
		f.bodyStart = i + len(headerDelim)
		f.resp.ContentLength = cl
		if cl < 0 {
			f.mode = connectionDelimited
		} else {
			if int64(f.bodyStart)+cl > int64(f.limit) {
				return http.Errorf(http.BufferOverflow, "read response",
					"Content-Length %d exceeds buffer limit %d", cl, f.limit)
			}
			f.mode = lengthDelimited
			f.remaining = cl
		}
	}

	if f.mode == lengthDelimited && int64(len(b)-f.bodyStart) >= f.remaining {
		f.done = true
	}
	return nil
}

// finalize copies the body out of the pooled buffer. bytes past
// Content-Length are dropped.
func (f *framer) finalize(b []byte) *http.Response {
	n := len(b) - f.bodyStart
	if f.mode == lengthDelimited {
		n = int(f.remaining)
	}
	f.resp.Body = make([]byte, n)
	copy(f.resp.Body, b[f.bodyStart:f.bodyStart+n])
	return f.resp
}
