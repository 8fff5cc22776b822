package tracking

import (
	"slices"

	"github.com/unklstewy/ads-flights/pkg/adsb"
)

// Aircraft groups every event reported under one identifier.
type Aircraft struct {
	Identifier string

	// Events in the order they were first seen in the input
	Events []adsb.Event
}

// GroupByAircraft buckets events by aircraft identifier.
// No event is filtered, dropped or duplicated; each aircraft keeps its events
// in input order.
func GroupByAircraft(events []adsb.Event) map[string]*Aircraft {
	fleet := make(map[string]*Aircraft)
	for _, ev := range events {
		ac, ok := fleet[ev.AircraftIdentifier]
		if !ok {
			ac = &Aircraft{Identifier: ev.AircraftIdentifier}
			fleet[ev.AircraftIdentifier] = ac
		}
		ac.Events = append(ac.Events, ev)
	}
	return fleet
}

// SortedIdentifiers returns the fleet's aircraft identifiers in ascending order.
func SortedIdentifiers(fleet map[string]*Aircraft) []string {
	ids := make([]string, 0, len(fleet))
	for id := range fleet {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
