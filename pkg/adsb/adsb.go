package adsb

import (
	"context"
	"time"

	"github.com/unklstewy/ads-flights/pkg/coordinates"
)

// Event is a single timestamped ADS-B report from one aircraft.
// Position and altitude are optional: many reports carry only one of them.
type Event struct {
	// AircraftIdentifier is the ICAO address or registration the report was sent under
	AircraftIdentifier string `json:"identifier"`

	// Timestamp is when the report was received (UTC)
	Timestamp time.Time `json:"timestamp"`

	// Latitude in decimal degrees (-90 to +90), nil if not reported
	Latitude *float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180), nil if not reported
	Longitude *float64 `json:"longitude"`

	// Altitude in feet above mean sea level (MSL), nil if not reported
	// Note: Some aircraft report geometric altitude, others barometric
	Altitude *float64 `json:"altitude"`
}

// Location returns the reported position, unset if either coordinate is missing.
func (e Event) Location() coordinates.GeoPoint {
	return coordinates.GeoPointFrom(e.Latitude, e.Longitude)
}

// HasLocation reports whether both coordinates are present.
func (e Event) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// HasAltitude reports whether an altitude is present.
func (e Event) HasAltitude() bool {
	return e.Altitude != nil
}

// EventSource is the interface that all ADS-B event providers must implement.
// This abstraction allows loading a capture from a file or from the database.
type EventSource interface {
	// Events returns every recorded event. Order is not significant.
	Events(ctx context.Context) ([]Event, error)
}
