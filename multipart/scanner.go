package multipart

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// peekBufferSize is the bufio window the scanner peeks into while looking
// for the next boundary. Boundary tokens are at most 70 bytes (RFC 2046),
// so a partial delimiter always fits in the carry-over at the window's end.
const peekBufferSize = 4 << 10

// scanner splits a multipart body into segments. It reads the underlying
// stream exactly once and never looks further ahead than the peek window,
// so boundary detection works on arbitrarily large bodies.
type scanner struct {
	bufReader *bufio.Reader

	newLine          []byte // "\r\n"
	nlDashBoundary   []byte // "\r\n--boundary"
	dashBoundary     []byte // "--boundary"
	dashBoundaryDash []byte // "--boundary--"

	partsRead int
	current   *segmentReader
}

// segment is one raw part: its header lines as they appeared on the wire,
// and a reader over exactly the body bytes of that part.
type segment struct {
	rawLines []string
	body     *segmentReader
}

func newScanner(r io.Reader, boundary string) *scanner {
	b := []byte("\r\n--" + boundary + "--")
	return &scanner{
		bufReader:        bufio.NewReaderSize(r, peekBufferSize),
		newLine:          b[:2],
		nlDashBoundary:   b[:len(b)-2],
		dashBoundary:     b[2 : len(b)-2],
		dashBoundaryDash: b[2:],
	}
}

// next advances to the following segment. The previous segment's body must
// be fully drained first. Returns io.EOF after the terminating boundary.
func (sc *scanner) next() (*segment, error) {
	if sc.current != nil && !sc.current.done() {
		return nil, fmt.Errorf("multipart: requested next part before finishing previous")
	}
	expectNewPart := false
	for {
		line, err := sc.bufReader.ReadSlice('\n')
		if err == io.EOF && sc.isFinalBoundary(line) {
			return nil, io.EOF
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, &MalformedBodyError{Reason: "body ends before terminating boundary"}
			}
			return nil, err
		}
		if sc.isBoundaryDelimiterLine(line) {
			sc.partsRead++
			return sc.readSegment()
		}
		if sc.isFinalBoundary(line) {
			return nil, io.EOF
		}
		if expectNewPart {
			return nil, &MalformedBodyError{Reason: fmt.Sprintf("expecting a new part, got line %q", string(line))}
		}
		if sc.partsRead == 0 {
			// Preamble before the first boundary is ignored.
			continue
		}
		if bytes.Equal(line, sc.newLine) {
			expectNewPart = true
			continue
		}
		return nil, &MalformedBodyError{Reason: fmt.Sprintf("unexpected line after part: %q", string(line))}
	}
}

// readSegment consumes the header block following a boundary delimiter and
// hands back a reader bounded to the part body.
func (sc *scanner) readSegment() (*segment, error) {
	var lines []string
	for {
		line, err := sc.bufReader.ReadString('\n')
		if err != nil {
			return nil, &MalformedBodyError{Reason: "part header block is not terminated", Err: err}
		}
		line = trimCRLF(line)
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	sc.current = &segmentReader{sc: sc}
	return &segment{rawLines: lines, body: sc.current}, nil
}

func trimCRLF(line string) string {
	line = line[:len(line)-1] // ReadString guarantees the trailing \n
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// isFinalBoundary reports whether the line terminates the whole body. The
// check is a prefix match: trailing characters after "--boundary--" are
// tolerated, as some producers append stray dashes or whitespace there.
func (sc *scanner) isFinalBoundary(line []byte) bool {
	return bytes.HasPrefix(line, sc.dashBoundaryDash)
}

func (sc *scanner) isBoundaryDelimiterLine(line []byte) bool {
	if !bytes.HasPrefix(line, sc.dashBoundary) {
		return false
	}
	rest := skipLWSPChar(line[len(sc.dashBoundary):])
	return bytes.Equal(rest, sc.newLine)
}

// skipLWSPChar drops leading spaces and tabs; boundary delimiter lines may
// carry trailing linear whitespace before their CRLF.
func skipLWSPChar(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	return b
}

// segmentReader yields the bytes of one part body, stopping just short of
// the delimiter that ends it. The CRLF introducing the delimiter belongs to
// the delimiter, not the body, except that only one CRLF is ever claimed:
// a blank line at the end of the content keeps its own CRLF as data.
type segmentReader struct {
	sc      *scanner
	n       int   // bytes in the peek window known to be body data
	total   int64 // body bytes handed out so far
	err     error // terminal state; io.EOF once the delimiter is reached
	readErr error // sticky error from the underlying stream
}

func (r *segmentReader) done() bool {
	return r.err != nil
}

func (r *segmentReader) Read(d []byte) (int, error) {
	br := r.sc.bufReader

	// Widen the window until some data bytes are identified or a reason
	// to stop appears (boundary hit or stream error).
	for r.n == 0 && r.err == nil {
		peek, _ := br.Peek(br.Buffered())
		r.n, r.err = scanUntilBoundary(peek, r.sc.dashBoundary, r.sc.nlDashBoundary, r.total, r.readErr)
		if r.n == 0 && r.err == nil {
			_, r.readErr = br.Peek(len(peek) + 1)
			if r.readErr == io.EOF {
				r.readErr = io.ErrUnexpectedEOF
			}
		}
	}
	if r.n == 0 {
		return 0, r.err
	}
	n := len(d)
	if n > r.n {
		n = r.n
	}
	n, _ = br.Read(d[:n])
	r.total += int64(n)
	r.n -= n
	if r.n == 0 {
		return n, r.err
	}
	return n, nil
}

// scanUntilBoundary inspects buf, which begins total bytes into the part
// body, and reports how many leading bytes are body data. It returns io.EOF
// once the delimiter is reached, and readErr when buf is exhausted without
// a verdict.
func scanUntilBoundary(buf, dashBoundary, nlDashBoundary []byte, total int64, readErr error) (int, error) {
	if total == 0 {
		// At the body's start a delimiter is not preceded by CRLF.
		if bytes.HasPrefix(buf, dashBoundary) {
			switch matchAfterPrefix(buf, dashBoundary, readErr) {
			case -1:
				return len(dashBoundary), nil
			case 0:
				return 0, nil
			case +1:
				return 0, io.EOF
			}
		}
		if bytes.HasPrefix(dashBoundary, buf) {
			return 0, readErr
		}
	}

	if i := bytes.Index(buf, nlDashBoundary); i >= 0 {
		switch matchAfterPrefix(buf[i:], nlDashBoundary, readErr) {
		case -1:
			return i + len(nlDashBoundary), nil
		case 0:
			return i, nil
		case +1:
			return i, io.EOF
		}
	}
	if bytes.HasPrefix(nlDashBoundary, buf) {
		return 0, readErr
	}

	// No delimiter in buf. Everything is data except a possible partial
	// delimiter prefix carried at the very end of the window.
	if i := bytes.LastIndexByte(buf, nlDashBoundary[0]); i >= 0 && bytes.HasPrefix(nlDashBoundary, buf[i:]) {
		return i, nil
	}
	return len(buf), readErr
}

// matchAfterPrefix checks the byte after prefix in buf: +1 if it confirms a
// boundary (dash, CR, LF, space or tab), -1 if it rules one out, 0 if more
// data is needed to decide.
func matchAfterPrefix(buf, prefix []byte, readErr error) int {
	if len(buf) == len(prefix) {
		if readErr != nil {
			return +1
		}
		return 0
	}
	c := buf[len(prefix)]
	if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '-' {
		return +1
	}
	return -1
}
