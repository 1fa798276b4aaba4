// package transport contains implementations to requirements on *message syntaxes*
// defined by http related RFCs, limited to what a client talking to a forward
// proxy over a fresh connection per request needs:
//
//	HTTP Semantics (RFC9110) for the absolute-form request-target and Proxy-Authorization
//	HTTP/1.1 (RFC9112) for response framing by Content-Length or connection close
//
// chunked transfer coding is recognized and rejected, never decoded.
//
// net/http components are reused on the "semantics" part ([net/http.Header], etc.)

package transport
