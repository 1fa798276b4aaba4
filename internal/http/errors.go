package http

import (
	"golang.org/x/xerrors"
)

// Kind classifies a failure. A Kind is itself an error so that
// errors.Is(err, ConnectionFailed) works on any wrapped *Error.
type Kind int

const (
	MalformedURL Kind = iota + 1
	UnsupportedProtocol
	ConnectionFailed
	IOError
	BufferOverflow
	UnexpectedClose
	RequestFailed
	TooManyRedirects
	UnsupportedEncoding
	InvalidResponse
)

var kindNames = map[Kind]string{
	MalformedURL:        "malformed url",
	UnsupportedProtocol: "unsupported protocol",
	ConnectionFailed:    "connection failed",
	IOError:             "i/o error",
	BufferOverflow:      "buffer overflow",
	UnexpectedClose:     "server closed connection unexpectedly",
	RequestFailed:       "request failed",
	TooManyRedirects:    "too many redirects",
	UnsupportedEncoding: "unsupported transfer encoding",
	InvalidResponse:     "invalid response",
}

func (k Kind) Error() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown error"
}

type Error struct {
	Kind Kind
	Op   string // e.g. "dial", "read response"
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Errorf builds an *Error whose cause is formatted with xerrors, so %w
// keeps the chain intact.
func Errorf(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: xerrors.Errorf(format, args...)}
}

// Wrap returns nil for a nil err.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if xerrors.As(err, &e) {
		return e.Kind
	}
	return 0
}
