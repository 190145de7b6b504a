// Command formdump runs a small HTTP server that accepts multipart/form-data
// uploads and reports what it parsed. It exists to exercise the multipart
// package against real clients (curl -F, browsers).
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"github.com/piotrkot/takes"
	"github.com/piotrkot/takes/multipart"
)

func main() {
	var (
		addr    = flag.String("addr", ":8080", "listen address")
		spill   = flag.Int64("spill", multipart.DefaultSpillThreshold, "spill-to-disk threshold in bytes")
		algo    = flag.String("z", "", "spill compression algo to use (gzip/lz4)")
		verbose = flag.Bool("v", false, "log debug events")
	)
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	opts := multipart.Options{
		SpillThreshold:   *spill,
		SpillCompression: *algo,
		Logger:           logger,
	}

	r := mux.NewRouter()
	r.Handle("/upload", uploadHandler{logger: logger, opts: opts}).Methods(http.MethodPost)

	level.Info(logger).Log("msg", "listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		level.Error(logger).Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
}

type uploadHandler struct {
	logger log.Logger
	opts   multipart.Options
}

func (h uploadHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	form, err := multipart.Parse(takes.FromHTTP(req), h.opts)
	if err != nil {
		level.Error(h.logger).Log("msg", "parse failed", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer form.Close()

	for _, part := range form.Parts() {
		size := uint64(part.Body().Len())
		name := part.Name()
		if fn := part.FileName(); fn != "" {
			fmt.Fprintf(w, "%s (file %q): %s\n", name, fn, humanize.IBytes(size))
		} else {
			fmt.Fprintf(w, "%s: %s\n", name, humanize.IBytes(size))
		}
		level.Info(h.logger).Log("msg", "part received", "name", name, "bytes", size)
	}
}
