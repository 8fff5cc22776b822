package airports

import (
	"math"

	"github.com/unklstewy/ads-flights/pkg/coordinates"
)

// Cell is a whole-degree grid cell: (floor(latitude), floor(longitude)).
type Cell struct {
	Lat int
	Lon int
}

// CellOf returns the grid cell containing p. p must be valid.
func CellOf(p coordinates.GeoPoint) Cell {
	return Cell{
		Lat: int(math.Floor(p.Latitude)),
		Lon: int(math.Floor(p.Longitude)),
	}
}

// Index buckets airports into whole-degree cells and answers approximate
// nearest-airport queries over the 3x3 cell neighborhood of a point.
//
// Airports more than one cell away from the query point's cell are never
// returned, even when the index holds nothing closer. The index is read-only
// after NewIndex and safe for concurrent use.
type Index struct {
	cells map[Cell][]Airport
	byID  map[string]Airport
	count int
}

// NewIndex builds an index over airports. Order within a cell is insertion order.
func NewIndex(airports []Airport) *Index {
	idx := &Index{
		cells: make(map[Cell][]Airport),
		byID:  make(map[string]Airport, len(airports)),
		count: len(airports),
	}

	for _, a := range airports {
		c := CellOf(a.Location)
		idx.cells[c] = append(idx.cells[c], a)
		idx.byID[a.Identifier] = a
	}

	return idx
}

// Len returns the number of airports in the index.
func (idx *Index) Len() int {
	return idx.count
}

// Cells returns the number of non-empty grid cells.
func (idx *Index) Cells() int {
	return len(idx.cells)
}

// Lookup returns the airport with the given identifier.
func (idx *Index) Lookup(identifier string) (Airport, bool) {
	a, ok := idx.byID[identifier]
	return a, ok
}

// Nearest returns the closest airport to p among the 9 cells surrounding p's cell.
// It returns false when p is unset or no airport lies in those cells.
// When several airports are equally close the first one examined wins.
func (idx *Index) Nearest(p coordinates.GeoPoint) (Airport, bool) {
	if !p.Valid() {
		return Airport{}, false
	}

	var (
		closest  Airport
		found    bool
		bestDist = math.MaxFloat64
	)
	idx.forNeighborhood(p, func(a Airport) {
		if d := coordinates.DistanceNauticalMiles(p, a.Location); d < bestDist {
			bestDist = d
			closest = a
			found = true
		}
	})

	return closest, found
}

// Neighborhood returns every airport in the 3x3 cells around p, nil if p is unset.
func (idx *Index) Neighborhood(p coordinates.GeoPoint) []Airport {
	if !p.Valid() {
		return nil
	}

	var result []Airport
	idx.forNeighborhood(p, func(a Airport) {
		result = append(result, a)
	})
	return result
}

func (idx *Index) forNeighborhood(p coordinates.GeoPoint, fn func(Airport)) {
	center := CellOf(p)
	for dLat := -1; dLat <= 1; dLat++ {
		for dLon := -1; dLon <= 1; dLon++ {
			for _, a := range idx.cells[Cell{Lat: center.Lat + dLat, Lon: center.Lon + dLon}] {
				fn(a)
			}
		}
	}
}
