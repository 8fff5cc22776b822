package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/ads-flights/pkg/adsb"
)

func TestGroupByAircraft(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []adsb.Event{
		{AircraftIdentifier: "B", Timestamp: base.Add(3 * time.Minute)},
		{AircraftIdentifier: "A", Timestamp: base.Add(2 * time.Minute)},
		{AircraftIdentifier: "B", Timestamp: base.Add(1 * time.Minute)},
		{AircraftIdentifier: "A", Timestamp: base},
		{AircraftIdentifier: "B", Timestamp: base.Add(1 * time.Minute)},
	}

	fleet := GroupByAircraft(events)
	require.Len(t, fleet, 2)

	// input order is kept and duplicates survive
	require.Len(t, fleet["B"].Events, 3)
	assert.Equal(t, base.Add(3*time.Minute), fleet["B"].Events[0].Timestamp)
	assert.Equal(t, base.Add(1*time.Minute), fleet["B"].Events[2].Timestamp)
	require.Len(t, fleet["A"].Events, 2)
	assert.Equal(t, "A", fleet["A"].Identifier)

	total := 0
	for _, ac := range fleet {
		total += len(ac.Events)
	}
	assert.Equal(t, len(events), total)

	assert.Equal(t, []string{"A", "B"}, SortedIdentifiers(fleet))
}

func TestGroupByAircraftEmpty(t *testing.T) {
	fleet := GroupByAircraft(nil)
	assert.Empty(t, fleet)
	assert.Empty(t, SortedIdentifiers(fleet))
}
