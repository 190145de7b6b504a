package multipart

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"

	"github.com/piotrkot/takes"
)

// BodyPart is one segment fed to NewFake: its MIME headers and content.
type BodyPart struct {
	Header textproto.MIMEHeader
	Body   io.Reader
}

// FieldPart builds a plain form field.
func FieldPart(name, value string) BodyPart {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(name)))
	return BodyPart{Header: h, Body: strings.NewReader(value)}
}

// FilePart builds a file upload field streaming from content.
func FilePart(name, filename string, content io.Reader) BodyPart {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(name), escapeQuotes(filename)))
	h.Set("Content-Type", "application/octet-stream")
	return BodyPart{Header: h, Body: content}
}

// NewFake assembles a well-formed multipart/form-data request from the
// given parts, for tests and tools that need a request without a server.
// An empty boundary picks a random one. The body is streamed, never
// buffered whole, so fake requests can be arbitrarily large.
func NewFake(boundary string, parts ...BodyPart) (takes.Request, error) {
	if boundary == "" {
		boundary = randomBoundary()
	}
	if err := validateBoundary(boundary); err != nil {
		return nil, err
	}

	delimiter := []byte("\r\n--" + boundary + "\r\n")
	headDelimiter := delimiter[2:]
	closeDelimiter := []byte("\r\n--" + boundary + "--\r\n")

	readers := make([]io.Reader, 0, len(parts)*3+2)
	readers = append(readers, bytes.NewReader(headDelimiter))
	for i, part := range parts {
		if i > 0 {
			readers = append(readers, bytes.NewReader(delimiter))
		}
		var b bytes.Buffer
		for k, vv := range part.Header {
			for _, v := range vv {
				fmt.Fprintf(&b, "%s: %s\r\n", k, v)
			}
		}
		b.WriteString("\r\n")
		readers = append(readers, &b, part.Body)
	}
	readers = append(readers, bytes.NewReader(closeDelimiter))

	return takes.NewReq(
		io.MultiReader(readers...),
		"Content-Type", "multipart/form-data; boundary="+boundary,
	), nil
}

func randomBoundary() string {
	var buf [30]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}

func validateBoundary(boundary string) error {
	// rfc2046#section-5.1.1
	if len(boundary) < 1 || len(boundary) > 69 {
		return errors.New("multipart: invalid boundary length")
	}
	for _, b := range boundary {
		if 'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9' {
			continue
		}
		switch b {
		case '\'', '(', ')', '+', '_', ',', '-', '.', '/', ':', '=', '?':
			continue
		}
		return errors.New("multipart: invalid boundary character")
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
