// Package compression provides transparent stream compression for pairscan
// inputs and outputs. The codec is chosen from the file name suffix so that
// `expr.csv.gz` is read as a gzip-compressed CSV table and `pairs.tsv.zst` is
// written through a zstd encoder.
//
// # Supported suffixes
//
//	.gz   gzip   (klauspost/compress/gzip)
//	.zst  zstd   (klauspost/compress/zstd)
//	.sz   snappy (klauspost/compress/snappy, framed)
//	.s2   s2     (klauspost/compress/s2)
//	.lz4  lz4    (pierrec/lz4/v4)
//
// # Basic Usage
//
//	alg, inner := compression.FromPath("expr.csv.gz") // Gzip, "expr.csv"
//	rc, err := compression.NewReader(file, alg)
//	...
//	wc, err := compression.NewWriter(out, compression.Zstd, compression.Default)
package compression

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

var suffixes = map[string]Algorithm{
	".gz":  Gzip,
	".zst": Zstd,
	".sz":  Snappy,
	".s2":  S2,
	".lz4": LZ4,
}

// FromPath returns the algorithm implied by the path suffix and the path with
// that suffix removed. Paths without a known suffix return None and the path
// unchanged.
func FromPath(path string) (Algorithm, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if alg, ok := suffixes[ext]; ok {
		return alg, path[:len(path)-len(ext)]
	}
	return None, path
}

// ParseAlgorithm converts a configuration string to an Algorithm.
// The empty string maps to None.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", None:
		return None, nil
	case Gzip:
		return Gzip, nil
	case Snappy:
		return Snappy, nil
	case LZ4:
		return LZ4, nil
	case Zstd:
		return Zstd, nil
	case S2:
		return S2, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %s", name)
	}
}

// ParseLevel converts a configuration string ("fastest", "default",
// "better", "best") to a Level. The empty string maps to Default.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return Default, nil
	case "fastest":
		return Fastest, nil
	case "better":
		return Better, nil
	case "best":
		return Best, nil
	default:
		return Default, fmt.Errorf("unsupported compression level: %s", name)
	}
}

// Extension returns the file suffix written for alg ("" for None).
func (a Algorithm) Extension() string {
	for ext, alg := range suffixes {
		if alg == a {
			return ext
		}
	}
	return ""
}

// NewReader wraps r with a decoder for alg. Closing the returned reader
// releases decoder resources but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

// NewWriter wraps w with an encoder for alg. The returned writer must be
// closed to flush the final frame; closing it does not close w.
func NewWriter(w io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		zw, err := gzip.NewWriterLevel(w, mapGzipLevel(level))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return zw, nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case S2:
		return s2.NewWriter(w), nil
	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, fmt.Errorf("failed to configure lz4 writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
