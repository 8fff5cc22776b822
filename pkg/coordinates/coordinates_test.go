package coordinates

import (
	"math"
	"testing"
)

// TestGeoPointValidity tests the unset/valid states of GeoPoint.
func TestGeoPointValidity(t *testing.T) {
	lat, lon := 47.45, -122.31

	tests := []struct {
		name  string
		point GeoPoint
		want  bool
	}{
		{"Zero value", GeoPoint{}, false},
		{"Constructed", NewGeoPoint(lat, lon), true},
		{"Both components", GeoPointFrom(&lat, &lon), true},
		{"Missing latitude", GeoPointFrom(nil, &lon), false},
		{"Missing longitude", GeoPointFrom(&lat, nil), false},
		{"Origin is still valid", NewGeoPoint(0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDistanceNauticalMiles checks the haversine distance against known values.
func TestDistanceNauticalMiles(t *testing.T) {
	tests := []struct {
		name      string
		from      GeoPoint
		to        GeoPoint
		want      float64
		tolerance float64
	}{
		{
			name:      "Same point",
			from:      NewGeoPoint(40.0, -74.0),
			to:        NewGeoPoint(40.0, -74.0),
			want:      0,
			tolerance: 1e-9,
		},
		{
			name:      "One degree of latitude is ~60 nm",
			from:      NewGeoPoint(40.0, -74.0),
			to:        NewGeoPoint(41.0, -74.0),
			want:      60.0,
			tolerance: 0.1,
		},
		{
			name:      "KJFK to KLAX",
			from:      NewGeoPoint(40.6398, -73.7789),
			to:        NewGeoPoint(33.9425, -118.4081),
			want:      2145.0,
			tolerance: 10.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceNauticalMiles(tt.from, tt.to)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceNauticalMiles = %.3f, want %.3f (±%.3f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

// TestBearing tests cardinal bearings.
func TestBearing(t *testing.T) {
	origin := NewGeoPoint(40.0, -74.0)

	tests := []struct {
		name string
		to   GeoPoint
		want float64
	}{
		{"North", NewGeoPoint(41.0, -74.0), 0},
		{"East", NewGeoPoint(40.0, -73.0), 90},
		{"South", NewGeoPoint(39.0, -74.0), 180},
		{"West", NewGeoPoint(40.0, -75.0), 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(origin, tt.to)
			diff := math.Abs(got - tt.want)
			if diff > 180 {
				diff = 360 - diff
			}
			if diff > 1.0 {
				t.Errorf("Bearing = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}
