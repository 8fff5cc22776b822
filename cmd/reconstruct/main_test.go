package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/pkg/adsb"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
	"github.com/unklstewy/ads-flights/pkg/tracking"
)

// writeInputs writes a one-airport list and two short tracks: N1 climbs out
// of KSEA, N2 descends into it.
func writeInputs(t *testing.T, dir string) (string, string) {
	t.Helper()

	airportsPath := filepath.Join(dir, "airports.json")
	require.NoError(t, os.WriteFile(airportsPath,
		[]byte(`[{"identifier":"KSEA","latitude":47.4502,"longitude":-122.3088,"elevation":433}]`), 0644))

	var lines []string
	for i := 0; i < 10; i++ {
		ts := fmt.Sprintf("2024-05-01T06:%02d:00Z", i)
		lines = append(lines,
			fmt.Sprintf(`{"identifier":"N1","timestamp":%q,"latitude":47.45,"longitude":-122.31,"altitude":%d}`, ts, 500*i),
			fmt.Sprintf(`{"identifier":"N2","timestamp":%q,"latitude":47.45,"longitude":-122.31,"altitude":%d}`, ts, 5000-500*i),
		)
	}
	eventsPath := filepath.Join(dir, "events.jsonl")
	require.NoError(t, os.WriteFile(eventsPath, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	return airportsPath, eventsPath
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	airportsPath, eventsPath := writeInputs(t, dir)

	cfg := config.DefaultConfig()
	cfg.Input.AirportsPath = airportsPath
	cfg.Input.EventsPath = eventsPath
	cfg.Output.FlightsPath = filepath.Join(dir, "out", "flights.jsonl")
	cfg.Database.Driver = db.DriverSQLite
	cfg.Database.Path = filepath.Join(dir, "flights.db")
	return cfg
}

func TestRunFromFiles(t *testing.T) {
	cfg := testConfig(t)

	summary, err := run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Airports)
	assert.Equal(t, 20, summary.Events)
	assert.Equal(t, 2, summary.Aircraft)
	assert.Equal(t, 2, summary.Flights)

	flights, err := tracking.LoadFlights(cfg.Output.FlightsPath)
	require.NoError(t, err)
	require.Len(t, flights, 2)

	assert.Equal(t, "N1", flights[0].AircraftIdentifier)
	require.NotNil(t, flights[0].DepartureAirport)
	assert.Equal(t, "KSEA", *flights[0].DepartureAirport)
	assert.False(t, flights[0].HasArrival())

	assert.Equal(t, "N2", flights[1].AircraftIdentifier)
	assert.False(t, flights[1].HasDeparture())
	require.NotNil(t, flights[1].ArrivalAirport)
	assert.Equal(t, "KSEA", *flights[1].ArrivalAirport)
}

func TestRunStoresInDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.StoreInDatabase = true
	cfg.Output.FlightsPath = ""

	summary, err := run(context.Background(), cfg)
	require.NoError(t, err)

	database, err := db.Connect(cfg.Database)
	require.NoError(t, err)
	defer database.Close()

	stored, err := db.NewFlightRepository(database).ListFlights(context.Background(), summary.ID, "")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestRunFromDatabase(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	airportList, err := airports.Load(cfg.Input.AirportsPath)
	require.NoError(t, err)
	events, err := adsb.NewFileSource(cfg.Input.EventsPath).Events(ctx)
	require.NoError(t, err)

	database, err := db.Connect(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.InitSchema(ctx))
	_, err = db.NewAirportRepository(database).UpsertAirports(ctx, airportList)
	require.NoError(t, err)
	_, err = db.NewEventRepository(database).InsertEvents(ctx, events)
	require.NoError(t, err)
	database.Close()

	cfg.Input.Source = config.SourceDatabase
	cfg.Input.AirportsPath = ""
	cfg.Input.EventsPath = ""

	summary, err := run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.Events)
	assert.Equal(t, 2, summary.Flights)
}

func TestRunMissingEvents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.EventsPath = filepath.Join(t.TempDir(), "missing.jsonl")

	_, err := run(context.Background(), cfg)
	assert.ErrorContains(t, err, "failed to load events")
}
