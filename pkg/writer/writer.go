// Package writer persists scan results. The output format follows the path:
// ".csv" is comma delimited, ".tsv" and ".txt" are tab delimited, ".json" and
// ".jsonl" are JSON lines keyed by the header. A compression suffix such as
// ".gz" or ".zst" wraps any of them.
//
// Results are written to a temporary file next to the destination and renamed
// into place only after every row has been flushed, so a failed write never
// leaves a partial output file behind.
package writer

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pairscan/pkg/compression"
	"github.com/ajitpratap0/pairscan/pkg/errors"
	"github.com/ajitpratap0/pairscan/pkg/frame"
	"github.com/ajitpratap0/pairscan/pkg/observability"
)

// Result is anything that renders as a header plus string rows.
type Result interface {
	Header() []string
	Rows() [][]string
}

// Options controls how results are encoded.
type Options struct {
	// Level applies when the path carries a compression suffix
	Level compression.Level
	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

type encoding int

const (
	encodingDelimited encoding = iota
	encodingJSONLines
)

var tracer = observability.NewScanTracer("result")

// Write encodes result to path.
//
// Errors:
//   - ErrorTypeFileFormat when the extension names no supported format
//   - ErrorTypeIO when the file cannot be created, written or renamed
func Write(ctx context.Context, path string, result Result, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	level := opts.Level
	if level == 0 {
		level = compression.Default
	}

	alg, inner := compression.FromPath(path)
	enc, delim, err := detectEncoding(inner)
	if err != nil {
		return err
	}

	return tracer.Trace(ctx, "write", func(ctx context.Context) error {
		start := time.Now()
		rows := result.Rows()

		err := commit(path, func(w io.Writer) error {
			cw, err := compression.NewWriter(w, alg, level)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeIO, "could not create encoder")
			}
			switch enc {
			case encodingJSONLines:
				err = writeJSONLines(cw, result.Header(), rows)
			default:
				err = writeDelimited(cw, delim, result.Header(), rows)
			}
			if err != nil {
				cw.Close()
				return err
			}
			if err := cw.Close(); err != nil {
				return errors.Wrap(err, errors.ErrorTypeIO, "could not flush encoder")
			}
			return nil
		})
		if err != nil {
			return err
		}

		logger.Info("results written",
			zap.String("path", path),
			zap.Int("rows", len(rows)),
			zap.String("compression", string(alg)),
			zap.Duration("duration", time.Since(start)))
		return nil
	})
}

// CheckPath reports whether path names a supported output format, so callers
// can reject it before doing any work. It returns ErrorTypeFileFormat
// otherwise.
func CheckPath(path string) error {
	_, inner := compression.FromPath(path)
	_, _, err := detectEncoding(inner)
	return err
}

func detectEncoding(path string) (encoding, rune, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl":
		return encodingJSONLines, 0, nil
	}
	delim, err := frame.Delimiter(path)
	if err != nil {
		return 0, 0, err
	}
	return encodingDelimited, delim, nil
}

// commit runs fill against a temporary file in path's directory and renames
// it to path once fill and the final flush succeed.
func commit(path string, fill func(io.Writer) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "could not create output file").WithDetail("path", path)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<16)
	if err := fill(bw); err != nil {
		return withPath(err, path)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "could not write output file").WithDetail("path", path)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "could not set output permissions").WithDetail("path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "could not close output file").WithDetail("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		committed = true
		return errors.Wrap(err, errors.ErrorTypeIO, "could not move output into place").WithDetail("path", path)
	}
	committed = true
	return nil
}

func withPath(err error, path string) error {
	var e *errors.Error
	if errors.As(err, &e) {
		e.WithDetail("path", path)
		return e
	}
	return errors.Wrap(err, errors.ErrorTypeIO, "could not write output file").WithDetail("path", path)
}

func writeDelimited(w io.Writer, delim rune, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "could not write header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "could not write rows")
	}
	return nil
}

// writeJSONLines writes one object per row. Values stay strings so the
// fixed decimal rendering of correlations survives.
func writeJSONLines(w io.Writer, header []string, rows [][]string) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	record := make(map[string]string, len(header))
	for _, row := range rows {
		for k, name := range header {
			if k < len(row) {
				record[name] = row[k]
			} else {
				record[name] = ""
			}
		}
		if err := enc.Encode(record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeIO, "could not encode row")
		}
	}
	return nil
}
