// Package takes provides a minimal view of an incoming HTTP request for
// body-parsing components that do not need the full net/http surface.
package takes

import (
	"io"
	"net/http"
	"net/textproto"
)

// Request is the slice of an HTTP request that body parsers consume: header
// lookup and the raw body stream. The body is owned by whoever created the
// request; parsers borrow it and must not close it.
type Request interface {
	// Header returns the first value of the named header and whether the
	// header is present at all. Lookup is case-insensitive.
	Header(name string) (string, bool)

	// Body returns the raw request body, positioned at its start.
	Body() io.Reader
}

// Req is an in-memory Request, mostly useful in tests and tools.
type Req struct {
	Headers http.Header
	Content io.Reader
}

// NewReq builds a Request from header key/value pairs and a body stream.
func NewReq(body io.Reader, headers ...string) *Req {
	if len(headers)%2 != 0 {
		panic("takes: NewReq requires an even number of header strings")
	}
	h := make(http.Header, len(headers)/2)
	for i := 0; i < len(headers); i += 2 {
		h.Add(headers[i], headers[i+1])
	}
	return &Req{Headers: h, Content: body}
}

// Header implements Request.
func (r *Req) Header(name string) (string, bool) {
	vs, ok := r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Body implements Request.
func (r *Req) Body() io.Reader {
	return r.Content
}

// FromHTTP adapts a *http.Request. The adapter does not take ownership of
// req.Body; closing it remains the server's job.
func FromHTTP(req *http.Request) Request {
	return &Req{Headers: req.Header, Content: req.Body}
}
