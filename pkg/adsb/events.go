package adsb

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/unklstewy/ads-flights/pkg/datafile"
)

// maxLineBytes bounds a single JSON-lines record.
const maxLineBytes = 1024 * 1024

// FileSource reads events from a JSON-lines capture (optionally zstd-compressed).
type FileSource struct {
	Path string
}

// NewFileSource creates an event source backed by the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Events loads every event in the file.
// A missing file yields datafile.ErrMissingSource; any undecodable line aborts the load
// with a *datafile.RecordError.
func (s *FileSource) Events(ctx context.Context) ([]Event, error) {
	r, err := datafile.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ReadEvents(ctx, r, s.Path)
}

// ReadEvents decodes one JSON event per line from r. Blank lines are ignored.
// Key matching is case-insensitive, so "Identifier" and "identifier" both decode.
func ReadEvents(ctx context.Context, r io.Reader, source string) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var events []Event
	line := 0
	for scanner.Scan() {
		line++
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, &datafile.RecordError{Source: source, Line: line, Err: err}
		}
		if ev.AircraftIdentifier == "" {
			return nil, &datafile.RecordError{Source: source, Line: line, Err: errors.New("missing aircraft identifier")}
		}
		if ev.Timestamp.IsZero() {
			return nil, &datafile.RecordError{Source: source, Line: line, Err: errors.New("missing timestamp")}
		}

		events = append(events, ev)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	return events, nil
}

// WriteEvents encodes events as JSON lines.
func WriteEvents(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for i := range events {
		if err := enc.Encode(&events[i]); err != nil {
			return fmt.Errorf("failed to encode event %d: %w", i, err)
		}
	}
	return nil
}
