package multipart

import (
	"mime"
	"net/textproto"
	"strings"
)

// Part is one named segment of a multipart body. Its body is self-contained
// once parsing finishes: reading it never touches the request stream, and
// parts may be consumed in any order.
type Part struct {
	name     string
	filename string
	rawLines []string
	header   textproto.MIMEHeader
	body     *Body
}

func newPart(rawLines []string, body *Body) *Part {
	p := &Part{
		rawLines: rawLines,
		header:   make(textproto.MIMEHeader, len(rawLines)),
		body:     body,
	}
	for _, line := range rawLines {
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		p.header.Add(strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]))
	}
	if cd := p.header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			p.name = params["name"]
			p.filename = params["filename"]
		}
	}
	return p
}

// Name is the value of the Content-Disposition name attribute, or the empty
// string when the part carries no usable disposition.
func (p *Part) Name() string {
	return p.name
}

// FileName is the Content-Disposition filename attribute, if any.
func (p *Part) FileName() string {
	return p.filename
}

// Header returns the first value of the named part header.
func (p *Part) Header(key string) (string, bool) {
	vs := p.header.Values(key)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// RawHeaders returns the part's header lines in wire order, without their
// CRLF terminators.
func (p *Part) RawHeaders() []string {
	return p.rawLines
}

// Body returns the part content. The caller should close it when done;
// unclosed bodies are released by Form.Close.
func (p *Part) Body() *Body {
	return p.body
}
