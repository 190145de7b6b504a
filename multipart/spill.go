package multipart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultSpillThreshold is the number of body bytes a part may hold in
// memory before the remainder is streamed to a temporary file.
const DefaultSpillThreshold = 8 << 20

var errBodyClosed = errors.New("multipart: read from closed body")

// Body is one part's content. Len reports the exact number of unread body
// bytes, regardless of whether the content lives in memory or in a spill
// file. Close releases the backing resource and is idempotent.
type Body struct {
	rem    int64
	src    io.Reader
	file   *os.File // non-nil when disk-backed
	closed bool
}

// Len returns the remaining unread length of the part body.
func (b *Body) Len() int {
	return int(b.rem)
}

func (b *Body) Read(p []byte) (int, error) {
	if b.closed {
		return 0, errBodyClosed
	}
	if b.rem <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > b.rem {
		p = p[:b.rem]
	}
	n, err := b.src.Read(p)
	b.rem -= int64(n)
	if err == io.EOF && b.rem > 0 {
		err = io.ErrUnexpectedEOF
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Close drops the in-memory buffer or deletes the spill file. Closing one
// part's body never affects its siblings; repeated closes are no-ops.
func (b *Body) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.src = nil
	if b.file == nil {
		return nil
	}
	name := b.file.Name()
	err := b.file.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	b.file = nil
	return err
}

// spillWriter materializes a part body while it is copied off the shared
// request stream. Bytes stay in memory until the threshold is crossed, then
// the whole body moves to a temporary file, optionally compressed.
type spillWriter struct {
	threshold int64
	algo      string
	level     int
	logger    log.Logger

	size int64
	mem  bytes.Buffer
	file *os.File
	zw   io.WriteCloser
}

func newSpillWriter(threshold int64, algo string, level int, logger log.Logger) *spillWriter {
	if threshold <= 0 {
		threshold = DefaultSpillThreshold
	}
	return &spillWriter{
		threshold: threshold,
		algo:      algo,
		level:     level,
		logger:    logger,
	}
}

func (w *spillWriter) Write(p []byte) (int, error) {
	if w.file == nil && w.size+int64(len(p)) > w.threshold {
		if err := w.spill(); err != nil {
			return 0, err
		}
	}
	var (
		n   int
		err error
	)
	switch {
	case w.zw != nil:
		n, err = w.zw.Write(p)
	case w.file != nil:
		n, err = w.file.Write(p)
	default:
		n, err = w.mem.Write(p)
	}
	w.size += int64(n)
	return n, err
}

// spill moves the buffered bytes to a fresh temp file and redirects all
// further writes there.
func (w *spillWriter) spill() error {
	f, err := os.CreateTemp("", "multipart-spill-*")
	if err != nil {
		return fmt.Errorf("multipart: creating spill file: %w", err)
	}
	var dst io.Writer = f
	if w.algo != "" {
		zw, err := compress(w.algo, w.level, f)
		if err != nil {
			f.Close()
			os.Remove(f.Name())
			return err
		}
		w.zw = zw
		dst = zw
	}
	if _, err := dst.Write(w.mem.Bytes()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("multipart: writing spill file: %w", err)
	}
	w.mem.Reset()
	w.file = f
	level.Debug(w.logger).Log("msg", "part body spilled to disk", "file", f.Name(), "threshold", w.threshold)
	return nil
}

// finish seals the writer and returns the finished body, positioned at the
// start of the part content.
func (w *spillWriter) finish() (*Body, error) {
	if w.file == nil {
		return &Body{rem: w.size, src: bytes.NewReader(w.mem.Bytes())}, nil
	}
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			w.abort()
			return nil, fmt.Errorf("multipart: flushing spill file: %w", err)
		}
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		w.abort()
		return nil, fmt.Errorf("multipart: rewinding spill file: %w", err)
	}
	var src io.Reader = w.file
	if w.algo != "" {
		zr, err := decompress(w.algo, w.file)
		if err != nil {
			w.abort()
			return nil, err
		}
		src = zr
	}
	return &Body{rem: w.size, src: src, file: w.file}, nil
}

// abort discards the writer and any spill file it created.
func (w *spillWriter) abort() {
	if w.file != nil {
		name := w.file.Name()
		w.file.Close()
		os.Remove(name)
		w.file = nil
	}
	w.mem.Reset()
}
