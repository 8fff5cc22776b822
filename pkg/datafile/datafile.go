// Package datafile opens the on-disk sources and sinks used by the reconstruction
// pipeline and defines the fatal error kinds they report.
//
// Files ending in ".zst" are transparently compressed/decompressed with zstd so that
// large ADS-B captures can be kept compressed on disk.
package datafile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrMissingSource is returned when a referenced input file does not exist.
	ErrMissingSource = errors.New("source not found")

	// ErrMalformedRecord is matched by every RecordError.
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError describes a record that could not be decoded.
type RecordError struct {
	// Source is the file (or table) the record came from
	Source string

	// Line is the 1-based line or row number, 0 if unknown
	Line int

	Err error
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: malformed record: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: malformed record: %v", e.Source, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedRecord) true for any RecordError.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Compressed reports whether path names a zstd-compressed file.
func Compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// BaseExt returns the extension of path ignoring a trailing ".zst",
// e.g. "airports.csv.zst" -> ".csv".
func BaseExt(path string) string {
	if Compressed(path) {
		path = path[:len(path)-len(filepath.Ext(path))]
	}
	return strings.ToLower(filepath.Ext(path))
}

// Open opens path for reading. A missing file is reported as ErrMissingSource.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	if !Compressed(path) {
		return f, nil
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create zstd reader for %s: %w", path, err)
	}
	return &zstdReadCloser{Decoder: zr, file: f}, nil
}

// Create creates (or truncates) path for writing, creating parent directories.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	if !Compressed(path) {
		return f, nil
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create zstd writer for %s: %w", path, err)
	}
	return &zstdWriteCloser{Encoder: zw, file: f}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}

type zstdWriteCloser struct {
	*zstd.Encoder
	file *os.File
}

func (z *zstdWriteCloser) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.file.Close()
		return err
	}
	return z.file.Close()
}
