package adsb

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unklstewy/ads-flights/pkg/datafile"
)

func floatPtr(f float64) *float64 { return &f }

// TestReadEvents tests decoding of JSON-lines captures.
func TestReadEvents(t *testing.T) {
	t.Run("Mixed optional fields", func(t *testing.T) {
		input := strings.Join([]string{
			`{"identifier":"A1B2C3","timestamp":"2020-01-01T10:00:00Z","latitude":47.45,"longitude":-122.31,"altitude":450}`,
			``,
			`{"Identifier":"A1B2C3","Timestamp":"2020-01-01T10:00:05Z","Latitude":null,"Longitude":null,"Altitude":900}`,
			`{"identifier":"D4E5F6","timestamp":"2020-01-01T10:00:07Z","latitude":33.94,"longitude":-118.40}`,
		}, "\n")

		events, err := ReadEvents(context.Background(), strings.NewReader(input), "test")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("Expected 3 events, got %d", len(events))
		}

		if !events[0].HasLocation() || !events[0].HasAltitude() {
			t.Error("Expected first event to carry location and altitude")
		}
		if events[1].HasLocation() {
			t.Error("Expected second event to have no location")
		}
		if events[1].AircraftIdentifier != "A1B2C3" {
			t.Errorf("Expected PascalCase keys to decode, got identifier %q", events[1].AircraftIdentifier)
		}
		if events[2].HasAltitude() {
			t.Error("Expected third event to have no altitude")
		}
		if !events[2].Location().Valid() {
			t.Error("Expected third event location to be valid")
		}

		want := time.Date(2020, 1, 1, 10, 0, 5, 0, time.UTC)
		if !events[1].Timestamp.Equal(want) {
			t.Errorf("Expected timestamp %v, got %v", want, events[1].Timestamp)
		}
	})

	t.Run("Malformed line aborts", func(t *testing.T) {
		input := `{"identifier":"A1","timestamp":"2020-01-01T10:00:00Z"}
{"identifier":"A1","timestamp":"not-a-time"}`

		_, err := ReadEvents(context.Background(), strings.NewReader(input), "events.txt")
		if !errors.Is(err, datafile.ErrMalformedRecord) {
			t.Fatalf("Expected ErrMalformedRecord, got: %v", err)
		}

		var recErr *datafile.RecordError
		if !errors.As(err, &recErr) || recErr.Line != 2 {
			t.Errorf("Expected error on line 2, got: %v", err)
		}
	})

	t.Run("Missing identifier aborts", func(t *testing.T) {
		input := `{"timestamp":"2020-01-01T10:00:00Z","altitude":100}`
		_, err := ReadEvents(context.Background(), strings.NewReader(input), "events.txt")
		if !errors.Is(err, datafile.ErrMalformedRecord) {
			t.Fatalf("Expected ErrMalformedRecord, got: %v", err)
		}
	})
}

// TestFileSource tests loading from disk.
func TestFileSource(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		src := NewFileSource(filepath.Join(t.TempDir(), "events.txt"))
		_, err := src.Events(context.Background())
		if !errors.Is(err, datafile.ErrMissingSource) {
			t.Fatalf("Expected ErrMissingSource, got: %v", err)
		}
	})

	t.Run("Written events load back", func(t *testing.T) {
		ts := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
		events := []Event{
			{AircraftIdentifier: "ABC", Timestamp: ts, Latitude: floatPtr(1), Longitude: floatPtr(2), Altitude: floatPtr(3000)},
			{AircraftIdentifier: "ABC", Timestamp: ts.Add(time.Second)},
		}

		var buf bytes.Buffer
		if err := WriteEvents(&buf, events); err != nil {
			t.Fatalf("WriteEvents failed: %v", err)
		}

		path := filepath.Join(t.TempDir(), "events.txt")
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}

		loaded, err := NewFileSource(path).Events(context.Background())
		if err != nil {
			t.Fatalf("Events failed: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(loaded))
		}
		if *loaded[0].Altitude != 3000 {
			t.Errorf("Expected altitude 3000, got %v", *loaded[0].Altitude)
		}
		if loaded[1].Latitude != nil || loaded[1].Altitude != nil {
			t.Error("Expected nil optional fields to stay nil")
		}
	})
}
