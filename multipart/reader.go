package multipart

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"

	"github.com/piotrkot/takes"
)

// Options configure parsing.
type Options struct {
	// SpillThreshold is the body size in bytes above which a part is
	// streamed to a temporary file instead of held in memory.
	// Zero means DefaultSpillThreshold.
	SpillThreshold int64

	// SpillCompression compresses spill files in transit to disk.
	// Supported values are "gzip" and "lz4"; empty means no compression.
	// Part bodies read back transparently decompressed either way.
	SpillCompression string

	// SpillCompressionLevel is the compression level for spill files.
	// Uses the algorithm's default if omitted.
	SpillCompressionLevel int

	// Logger receives debug events during parsing. Defaults to a nop logger.
	Logger log.Logger
}

// Form is the parsed multipart collection. Parts keep their order of
// appearance, both globally and within a shared name.
type Form struct {
	parts []*Part
	index map[string][]*Part
}

// Parse reads the request's multipart body to its terminating boundary and
// returns the materialized collection. The body stream is walked exactly
// once and is never closed here; that stays the caller's responsibility.
//
// Every part body is self-contained when Parse returns, so parts may be
// read in any order, or not at all. Call Form.Close to release whatever
// the caller did not close itself.
func Parse(req takes.Request, opts Options) (*Form, error) {
	boundary, err := boundaryOf(req)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	sc := newScanner(req.Body(), boundary)
	form := &Form{index: make(map[string][]*Part)}
	for {
		seg, err := sc.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			form.Close()
			return nil, err
		}
		w := newSpillWriter(opts.SpillThreshold, opts.SpillCompression, opts.SpillCompressionLevel, logger)
		if _, err := io.Copy(w, seg.body); err != nil {
			w.abort()
			form.Close()
			return nil, bodyReadError(err)
		}
		body, err := w.finish()
		if err != nil {
			form.Close()
			return nil, err
		}
		part := newPart(seg.rawLines, body)
		form.parts = append(form.parts, part)
		form.index[part.Name()] = append(form.index[part.Name()], part)
		level.Debug(logger).Log("msg", "parsed part", "name", part.Name(), "size", body.Len())
	}
	return form, nil
}

// boundaryOf extracts the boundary token from the Content-Type header.
func boundaryOf(req takes.Request) (string, error) {
	ct, ok := req.Header("Content-Type")
	if !ok {
		return "", &MalformedRequestError{Reason: "no Content-Type header"}
	}
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", &MalformedRequestError{Reason: fmt.Sprintf("unparseable Content-Type %q", ct)}
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", &MalformedRequestError{Reason: fmt.Sprintf("Content-Type %q is not multipart", mediaType)}
	}
	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return "", &MalformedRequestError{Reason: "Content-Type has no boundary parameter"}
	}
	return boundary, nil
}

func bodyReadError(err error) error {
	var malformed *MalformedBodyError
	if errors.As(err, &malformed) {
		return err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &MalformedBodyError{Reason: "body ends before terminating boundary", Err: err}
	}
	return fmt.Errorf("multipart: reading part body: %w", err)
}

// Parts returns all parts in order of appearance.
func (f *Form) Parts() []*Part {
	return f.parts
}

// Part returns the parts sharing the given name, in order of appearance.
// Absence is not an error; the result is simply empty.
func (f *Form) Part(name string) []*Part {
	return f.index[name]
}

// Close releases every part body that has not been closed yet. It is the
// safety net for request teardown; closing individual bodies first is fine.
func (f *Form) Close() error {
	var errs *multierror.Error
	for _, p := range f.parts {
		errs = multierror.Append(errs, p.body.Close())
	}
	return errs.ErrorOrNil()
}
