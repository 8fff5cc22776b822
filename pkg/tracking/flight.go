package tracking

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/unklstewy/ads-flights/pkg/datafile"
)

// Flight is one reconstructed leg. Any endpoint may be unknown, but never both.
type Flight struct {
	AircraftIdentifier string     `json:"aircraft_identifier" msgpack:"aircraft_identifier"`
	DepartureTime      *time.Time `json:"departure_time" msgpack:"departure_time"`
	DepartureAirport   *string    `json:"departure_airport" msgpack:"departure_airport"`
	ArrivalTime        *time.Time `json:"arrival_time" msgpack:"arrival_time"`
	ArrivalAirport     *string    `json:"arrival_airport" msgpack:"arrival_airport"`
}

// HasDeparture reports whether a departure was detected.
func (f Flight) HasDeparture() bool {
	return f.DepartureTime != nil || f.DepartureAirport != nil
}

// HasArrival reports whether an arrival was detected.
func (f Flight) HasArrival() bool {
	return f.ArrivalTime != nil || f.ArrivalAirport != nil
}

func (f Flight) String() string {
	return fmt.Sprintf("%s %s@%s -> %s@%s", f.AircraftIdentifier,
		orUnknown(f.DepartureAirport), timeOrUnknown(f.DepartureTime),
		orUnknown(f.ArrivalAirport), timeOrUnknown(f.ArrivalTime))
}

func orUnknown(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}

func timeOrUnknown(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return t.UTC().Format(time.RFC3339)
}

// Format selects the flights file encoding.
type Format string

const (
	// FormatJSONLines writes one JSON object per line
	FormatJSONLines Format = "jsonl"

	// FormatMsgpack writes a stream of msgpack maps
	FormatMsgpack Format = "msgpack"
)

// FormatForPath infers the encoding from a file name: ".msgpack" or ".mp"
// (optionally followed by ".zst") select msgpack, anything else JSON lines.
func FormatForPath(path string) Format {
	switch datafile.BaseExt(path) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	default:
		return FormatJSONLines
	}
}

// WriteFlights encodes flights to w in the given format.
func WriteFlights(w io.Writer, format Format, flights []Flight) error {
	switch format {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		for i := range flights {
			if err := enc.Encode(&flights[i]); err != nil {
				return fmt.Errorf("failed to encode flight %d: %w", i, err)
			}
		}
		return nil
	case FormatJSONLines, "":
		enc := json.NewEncoder(w)
		for i := range flights {
			if err := enc.Encode(&flights[i]); err != nil {
				return fmt.Errorf("failed to encode flight %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown flights format %q", format)
	}
}

// ReadFlights decodes a flights stream written by WriteFlights.
func ReadFlights(r io.Reader, format Format, source string) ([]Flight, error) {
	var flights []Flight

	switch format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		for {
			var f Flight
			if err := dec.Decode(&f); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, &datafile.RecordError{Source: source, Line: len(flights) + 1, Err: err}
			}
			flights = append(flights, f)
		}
	case FormatJSONLines, "":
		scanner := bufio.NewScanner(r)
		line := 0
		for scanner.Scan() {
			line++
			raw := bytes.TrimSpace(scanner.Bytes())
			if len(raw) == 0 {
				continue
			}
			var f Flight
			if err := json.Unmarshal(raw, &f); err != nil {
				return nil, &datafile.RecordError{Source: source, Line: line, Err: err}
			}
			flights = append(flights, f)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
	default:
		return nil, fmt.Errorf("unknown flights format %q", format)
	}

	return flights, nil
}

// SaveFlights writes flights to path, compressing when path ends in ".zst".
func SaveFlights(path string, format Format, flights []Flight) error {
	w, err := datafile.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := WriteFlights(bw, format, flights); err != nil {
		w.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		w.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return w.Close()
}

// LoadFlights reads a flights file, inferring the format from its name.
func LoadFlights(path string) ([]Flight, error) {
	r, err := datafile.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ReadFlights(bufio.NewReader(r), FormatForPath(path), path)
}
