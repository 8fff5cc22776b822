package tracking

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/unklstewy/ads-flights/pkg/adsb"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/coordinates"
)

// Segmentation defaults.
const (
	// DefaultMaxAltitude is the ceiling (ft) below which a descent-to-climb
	// reversal may be a landing. All airports are located below this altitude.
	DefaultMaxAltitude = 15000

	// DefaultGroundTolerance is the largest gap (ft) between aircraft altitude and
	// airport elevation still treated as stopping at the airport rather than flying over.
	DefaultGroundTolerance = 5000

	// DefaultStep is how many events the window advances each step.
	DefaultStep = 10

	// DefaultSampleSize is the window length in events.
	DefaultSampleSize = 25
)

// WindowAnchor selects which end of a window marks the landing.
type WindowAnchor string

const (
	// AnchorFirst lands on the window's first event and departs from its last.
	AnchorFirst WindowAnchor = "first"

	// AnchorLast lands on the window's last event and departs from its first.
	AnchorLast WindowAnchor = "last"
)

// ends returns the (arrival, departure) events of a window.
func (a WindowAnchor) ends(window []sample) (sample, sample) {
	first, last := window[0], window[len(window)-1]
	if a == AnchorLast {
		return last, first
	}
	return first, last
}

// Params tunes flight segmentation.
type Params struct {
	// MaxAltitude in feet; reversals at or above it are ignored
	MaxAltitude float64 `json:"max_altitude_ft"`

	// GroundTolerance in feet between altitude and airport elevation
	GroundTolerance float64 `json:"ground_tolerance_ft"`

	// Step is the window advance in events (>= 1)
	Step int `json:"step"`

	// SampleSize is the window length in events (>= 2)
	SampleSize int `json:"sample_size"`

	// Anchor picks the landing end of a window
	Anchor WindowAnchor `json:"window_anchor"`
}

// DefaultParams returns the standard segmentation settings.
func DefaultParams() Params {
	return Params{
		MaxAltitude:     DefaultMaxAltitude,
		GroundTolerance: DefaultGroundTolerance,
		Step:            DefaultStep,
		SampleSize:      DefaultSampleSize,
		Anchor:          AnchorFirst,
	}
}

// Validate checks that the parameters describe a usable window.
func (p Params) Validate() error {
	if p.SampleSize < 2 {
		return fmt.Errorf("sample size must be at least 2, got %d", p.SampleSize)
	}
	if p.Step < 1 {
		return fmt.Errorf("step must be at least 1, got %d", p.Step)
	}
	if p.GroundTolerance < 0 {
		return fmt.Errorf("ground tolerance must not be negative, got %.0f", p.GroundTolerance)
	}
	switch p.Anchor {
	case AnchorFirst, AnchorLast:
	default:
		return fmt.Errorf("unknown window anchor %q", p.Anchor)
	}
	return nil
}

// AirportLocator finds the airport serving a position.
// *airports.Index implements it.
type AirportLocator interface {
	Nearest(p coordinates.GeoPoint) (airports.Airport, bool)
}

// sample is an event known to carry both a location and an altitude.
type sample struct {
	timestamp time.Time
	location  coordinates.GeoPoint
	altitude  float64
}

// altitudeSeries drops events without coordinates, orders the rest by time and
// keeps those that also report an altitude.
func altitudeSeries(events []adsb.Event) []sample {
	located := make([]adsb.Event, 0, len(events))
	for _, ev := range events {
		if ev.HasLocation() {
			located = append(located, ev)
		}
	}
	slices.SortStableFunc(located, func(a, b adsb.Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	series := make([]sample, 0, len(located))
	for _, ev := range located {
		if !ev.HasAltitude() {
			continue
		}
		series = append(series, sample{
			timestamp: ev.Timestamp,
			location:  ev.Location(),
			altitude:  *ev.Altitude,
		})
	}
	return series
}

// Segment splits one aircraft's reports into flights.
//
// The start of the track is a departure if altitude rises across the first
// sample, the end is an arrival if it falls across the last sample, and every
// decrease-then-increase reversal below MaxAltitude near an airport (within
// GroundTolerance of its elevation) closes the current flight and opens the next.
// Tracks shorter than one sample only get the start and end checks.
func Segment(ac *Aircraft, locator AirportLocator, p Params) []Flight {
	series := altitudeSeries(ac.Events)
	if len(series) == 0 {
		return nil
	}

	open := Flight{AircraftIdentifier: ac.Identifier}
	open = checkDeparture(open, series, locator, p.SampleSize)
	open, closed := scanTransitions(open, series, locator, p)
	open = checkArrival(open, series, locator, p.SampleSize)

	if open.HasDeparture() || open.HasArrival() {
		closed = append(closed, open)
	}
	return closed
}

func checkDeparture(open Flight, series []sample, locator AirportLocator, size int) Flight {
	head := series[:min(size, len(series))]
	if head[0].altitude < head[len(head)-1].altitude {
		start := series[0]
		return open.withDeparture(start.timestamp, nearest(locator, start))
	}
	return open
}

func checkArrival(open Flight, series []sample, locator AirportLocator, size int) Flight {
	tail := series[len(series)-min(size, len(series)):]
	if tail[0].altitude > tail[len(tail)-1].altitude {
		end := series[len(series)-1]
		return open.withArrival(end.timestamp, nearest(locator, end))
	}
	return open
}

// scanTransitions slides the window over series and returns the flight still open
// at the end together with every flight closed along the way.
func scanTransitions(open Flight, series []sample, locator AirportLocator, p Params) (Flight, []Flight) {
	var closed []Flight
	altitudes := make([]float64, p.SampleSize)
	previous := TrendUnknown

	for offset := 0; offset+p.SampleSize <= len(series); offset += p.Step {
		window := series[offset : offset+p.SampleSize]
		for i, s := range window {
			altitudes[i] = s.altitude
		}
		current := ClassifyTrend(altitudes)

		if previous == TrendDecrease && current == TrendIncrease {
			arrival, departure := p.Anchor.ends(window)
			if arrival.altitude < p.MaxAltitude {
				airport, ok := landingAirport(locator, arrival, p.GroundTolerance)
				if !ok {
					// No airport to land at: an excursion, keep looking for the reversal.
					continue
				}

				closed = append(closed, open.withArrival(arrival.timestamp, &airport))
				open = Flight{AircraftIdentifier: open.AircraftIdentifier}.
					withDeparture(departure.timestamp, nearest(locator, departure))
			}
		}

		previous = current
	}

	return open, closed
}

// landingAirport returns the airport s could have landed at.
func landingAirport(locator AirportLocator, s sample, tolerance float64) (airports.Airport, bool) {
	airport, ok := locator.Nearest(s.location)
	if !ok {
		return airports.Airport{}, false
	}
	if math.Abs(float64(airport.Elevation)-s.altitude) >= tolerance {
		return airports.Airport{}, false
	}
	return airport, true
}

func nearest(locator AirportLocator, s sample) *airports.Airport {
	if airport, ok := locator.Nearest(s.location); ok {
		return &airport
	}
	return nil
}

func (f Flight) withDeparture(at time.Time, airport *airports.Airport) Flight {
	f.DepartureTime = &at
	f.DepartureAirport = nil
	if airport != nil {
		id := airport.Identifier
		f.DepartureAirport = &id
	}
	return f
}

func (f Flight) withArrival(at time.Time, airport *airports.Airport) Flight {
	f.ArrivalTime = &at
	f.ArrivalAirport = nil
	if airport != nil {
		id := airport.Identifier
		f.ArrivalAirport = &id
	}
	return f
}
