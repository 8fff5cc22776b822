package main

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/coordinates"
)

// Candidate is an airport in the searched neighborhood.
type Candidate struct {
	Airport    airports.Airport
	DistanceNM float64
	BearingDeg float64
	SameCell   bool
}

// SearchResult is the answer to one nearest-airport query.
type SearchResult struct {
	Query     coordinates.GeoPoint
	Cell      airports.Cell
	Nearest   *Candidate
	Neighbors []Candidate // sorted by distance
}

// search runs the same nearest-airport query the flight segmenter uses and
// lists everything else it considered.
func search(index *airports.Index, p coordinates.GeoPoint) SearchResult {
	result := SearchResult{Query: p, Cell: airports.CellOf(p)}

	for _, a := range index.Neighborhood(p) {
		result.Neighbors = append(result.Neighbors, Candidate{
			Airport:    a,
			DistanceNM: coordinates.DistanceNauticalMiles(p, a.Location),
			BearingDeg: coordinates.Bearing(p, a.Location),
			SameCell:   airports.CellOf(a.Location) == result.Cell,
		})
	}
	slices.SortStableFunc(result.Neighbors, func(a, b Candidate) int {
		switch {
		case a.DistanceNM < b.DistanceNM:
			return -1
		case a.DistanceNM > b.DistanceNM:
			return 1
		}
		return 0
	})

	if nearest, ok := index.Nearest(p); ok {
		for i := range result.Neighbors {
			if result.Neighbors[i].Airport.Identifier == nearest.Identifier {
				result.Nearest = &result.Neighbors[i]
				break
			}
		}
	}

	return result
}

// parsePoint reads latitude and longitude from form fields.
func parsePoint(latText, lonText string) (coordinates.GeoPoint, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return coordinates.GeoPoint{}, fmt.Errorf("invalid latitude %q", latText)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil {
		return coordinates.GeoPoint{}, fmt.Errorf("invalid longitude %q", lonText)
	}

	if lat < -90 || lat > 90 {
		return coordinates.GeoPoint{}, errors.New("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return coordinates.GeoPoint{}, errors.New("longitude must be between -180 and 180")
	}

	return coordinates.NewGeoPoint(lat, lon), nil
}

// Point is a screen position.
type Point struct {
	X, Y int
}

// project maps p onto a width x height area showing the 3x3 cells around
// center, north up. ok is false when p falls outside the neighborhood.
func project(p coordinates.GeoPoint, center airports.Cell, width, height int) (Point, bool) {
	south := float64(center.Lat - 1)
	west := float64(center.Lon - 1)

	fx := (p.Longitude - west) / 3
	fy := (south + 3 - p.Latitude) / 3
	if fx < 0 || fx >= 1 || fy <= 0 || fy > 1 {
		return Point{}, false
	}

	return Point{
		X: int(math.Floor(fx * float64(width))),
		Y: min(int(math.Floor(fy*float64(height))), height-1),
	}, true
}

// describe renders a result for the details panel using tview color tags.
func describe(r SearchResult) string {
	var s strings.Builder

	fmt.Fprintf(&s, "[yellow]QUERY:[-] [white]%s[-]\n", r.Query)
	fmt.Fprintf(&s, "[gray]Cell:[-]  [white]%d°, %d°[-]\n\n", r.Cell.Lat, r.Cell.Lon)

	if r.Nearest == nil {
		s.WriteString("[red]No airport within the surrounding cells[-]\n")
		return s.String()
	}

	n := r.Nearest
	fmt.Fprintf(&s, "[yellow]NEAREST:[-] [green]%s[-]\n", n.Airport.Identifier)
	fmt.Fprintf(&s, "[gray]Pos:[-]   [white]%s[-]\n", n.Airport.Location)
	fmt.Fprintf(&s, "[gray]Elev:[-]  [white]%d ft[-]\n", n.Airport.Elevation)
	fmt.Fprintf(&s, "[gray]Dist:[-]  [white]%.1f nm[-]  [gray]Brg:[-] [white]%03.0f°[-]\n", n.DistanceNM, n.BearingDeg)
	fmt.Fprintf(&s, "\n[gray]%d airports considered[-]\n", len(r.Neighbors))

	return s.String()
}
