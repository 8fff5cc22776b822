// Package airports holds the reference airport set and the degree-grid index used to
// attach the nearest airport to a departure or arrival point.
package airports

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/unklstewy/ads-flights/pkg/coordinates"
	"github.com/unklstewy/ads-flights/pkg/datafile"
)

// Airport is a known airport location.
type Airport struct {
	// Identifier is the unique airport code (e.g., "KSEA")
	Identifier string

	// Location is the airport reference point; always valid
	Location coordinates.GeoPoint

	// Elevation in feet above mean sea level
	Elevation int
}

// New creates an airport at the given coordinates.
func New(identifier string, latitude, longitude float64, elevation int) Airport {
	return Airport{
		Identifier: identifier,
		Location:   coordinates.NewGeoPoint(latitude, longitude),
		Elevation:  elevation,
	}
}

func (a Airport) String() string {
	return fmt.Sprintf("%s %s", a.Identifier, a.Location)
}

// record is the on-disk JSON shape of an airport.
type record struct {
	Identifier string   `json:"identifier"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Elevation  int      `json:"elevation"`
}

// Load reads airports from path. The format is chosen by extension:
// ".csv" for OurAirports-style CSV, anything else for a JSON array.
// A trailing ".zst" is decompressed transparently.
func Load(path string) ([]Airport, error) {
	r, err := datafile.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if datafile.BaseExt(path) == ".csv" {
		return ReadCSV(r, path)
	}
	return ReadJSON(r, path)
}

// ReadJSON decodes a JSON array of {identifier, latitude, longitude, elevation}.
func ReadJSON(r io.Reader, source string) ([]Airport, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &datafile.RecordError{Source: source, Err: err}
	}

	airports := make([]Airport, 0, len(records))
	for i, rec := range records {
		if rec.Identifier == "" {
			return nil, &datafile.RecordError{Source: source, Line: i + 1, Err: errors.New("missing identifier")}
		}
		if rec.Latitude == nil || rec.Longitude == nil {
			return nil, &datafile.RecordError{Source: source, Line: i + 1, Err: fmt.Errorf("airport %s has no location", rec.Identifier)}
		}
		airports = append(airports, New(rec.Identifier, *rec.Latitude, *rec.Longitude, rec.Elevation))
	}

	return airports, nil
}

// ReadCSV decodes an OurAirports-style CSV with at least the columns
// ident, latitude_deg, longitude_deg and elevation_ft. An empty elevation is read as 0.
func ReadCSV(r io.Reader, source string) ([]Airport, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, &datafile.RecordError{Source: source, Line: 1, Err: fmt.Errorf("failed to read CSV header: %w", err)}
	}

	colIndices := make(map[string]int)
	for i, col := range header {
		colIndices[strings.TrimSpace(col)] = i
	}

	required := []string{"ident", "latitude_deg", "longitude_deg", "elevation_ft"}
	for _, col := range required {
		if _, ok := colIndices[col]; !ok {
			return nil, &datafile.RecordError{Source: source, Line: 1, Err: fmt.Errorf("missing required column: %s", col)}
		}
	}

	var airports []Airport
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &datafile.RecordError{Source: source, Line: line, Err: err}
		}

		ident := strings.TrimSpace(row[colIndices["ident"]])
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[colIndices["latitude_deg"]]), 64)
		if err != nil {
			return nil, &datafile.RecordError{Source: source, Line: line, Err: fmt.Errorf("latitude: %w", err)}
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[colIndices["longitude_deg"]]), 64)
		if err != nil {
			return nil, &datafile.RecordError{Source: source, Line: line, Err: fmt.Errorf("longitude: %w", err)}
		}

		elevation := 0
		if s := strings.TrimSpace(row[colIndices["elevation_ft"]]); s != "" {
			if elevation, err = strconv.Atoi(s); err != nil {
				return nil, &datafile.RecordError{Source: source, Line: line, Err: fmt.Errorf("elevation: %w", err)}
			}
		}

		if ident == "" {
			return nil, &datafile.RecordError{Source: source, Line: line, Err: errors.New("missing identifier")}
		}

		airports = append(airports, New(ident, lat, lon, elevation))
	}

	return airports, nil
}
