package coordinates

import (
	"fmt"
	"math"
)

// Constants for coordinate calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusKm is the Earth's radius in kilometers (WGS84 mean radius)
	EarthRadiusKm = 6371.0

	// KmPerNauticalMile converts nautical miles to kilometers
	KmPerNauticalMile = 1.852

	// FeetToMeters converts feet to meters
	FeetToMeters = 0.3048

	// MetersToFeet converts meters to feet
	MetersToFeet = 3.28084
)

// GeoPoint is a latitude/longitude pair that may be unset.
// The zero value is an unset point; use NewGeoPoint or GeoPointFrom to build a valid one.
// Uses the WGS84 coordinate system (same as GPS).
type GeoPoint struct {
	// Latitude in decimal degrees (-90 to +90)
	// Positive = North, Negative = South
	Latitude float64

	// Longitude in decimal degrees (-180 to +180)
	// Positive = East, Negative = West
	Longitude float64

	valid bool
}

// NewGeoPoint returns a valid point at the given coordinates.
func NewGeoPoint(latitude, longitude float64) GeoPoint {
	return GeoPoint{Latitude: latitude, Longitude: longitude, valid: true}
}

// GeoPointFrom builds a point from optional components.
// The result is unset unless both latitude and longitude are present.
func GeoPointFrom(latitude, longitude *float64) GeoPoint {
	if latitude == nil || longitude == nil {
		return GeoPoint{}
	}
	return NewGeoPoint(*latitude, *longitude)
}

// Valid reports whether both coordinates are present.
func (g GeoPoint) Valid() bool {
	return g.valid
}

func (g GeoPoint) String() string {
	if !g.valid {
		return "(unknown)"
	}
	return fmt.Sprintf("(%.4f, %.4f)", g.Latitude, g.Longitude)
}

// ToRadians converts the point to radians.
// Returns (latRad, lonRad).
func (g GeoPoint) ToRadians() (float64, float64) {
	return g.Latitude * DegreesToRadians, g.Longitude * DegreesToRadians
}

// Bearing calculates the initial bearing (forward azimuth) from one point to another.
// Uses spherical trigonometry to calculate the bearing along a great circle.
// Returns bearing in degrees (0-360), where 0/360 = North, 90 = East, 180 = South, 270 = West.
func Bearing(from, to GeoPoint) float64 {
	lat1, lon1 := from.ToRadians()
	lat2, lon2 := to.ToRadians()

	dLon := lon2 - lon1
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * RadiansToDegrees

	// Normalize to 0-360
	if bearing < 0 {
		bearing += 360
	}

	return bearing
}

// DistanceNauticalMiles calculates the great-circle distance between two points.
// Uses the Haversine formula for accuracy over short and long distances.
// Returns distance in nautical miles.
func DistanceNauticalMiles(from, to GeoPoint) float64 {
	lat1Rad, lon1Rad := from.ToRadians()
	lat2Rad, lon2Rad := to.ToRadians()

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	// Haversine formula
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c / KmPerNauticalMile
}
