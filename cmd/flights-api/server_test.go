package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
	"github.com/unklstewy/ads-flights/pkg/tracking"
)

func ptr[T any](v T) *T { return &v }

// newTestServer returns a server over a seeded sqlite database and the id of
// its only run.
func newTestServer(t *testing.T) (*Server, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Database = config.DatabaseConfig{Driver: db.DriverSQLite, Path: filepath.Join(t.TempDir(), "api.db")}

	database, err := db.Connect(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.InitSchema(ctx))

	_, err = db.NewAirportRepository(database).UpsertAirports(ctx, []airports.Airport{
		airports.New("KSEA", 47.4502, -122.3088, 433),
		airports.New("KPDX", 45.5887, -122.5975, 31),
	})
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	id, err := db.NewFlightRepository(database).SaveRun(ctx, db.RunSummary{
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Params:     tracking.DefaultParams(),
	}, []tracking.Flight{
		{AircraftIdentifier: "A1", DepartureTime: ptr(start), DepartureAirport: ptr("KSEA")},
		{AircraftIdentifier: "B2", ArrivalTime: ptr(start), ArrivalAirport: ptr("KPDX")},
	})
	require.NoError(t, err)

	index, err := loadIndex(ctx, cfg, database)
	require.NoError(t, err)

	return NewServer(cfg, database, index), id
}

func get(t *testing.T, h http.Handler, path string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestRunsEndpoints(t *testing.T) {
	srv, id := newTestServer(t)

	var list struct {
		Runs  []db.RunSummary `json:"runs"`
		Count int             `json:"count"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/runs", &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, id, list.Runs[0].ID)
	assert.Equal(t, tracking.AnchorFirst, list.Runs[0].Params.Anchor)

	var run db.RunSummary
	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/runs/latest", &run))
	assert.Equal(t, 2, run.Flights)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/v1/runs/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/runs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/runs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/runs?limit=x", nil))
}

func TestFlightsEndpoint(t *testing.T) {
	srv, id := newTestServer(t)

	var resp struct {
		Flights []tracking.Flight `json:"flights"`
		Count   int               `json:"count"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/runs/"+id.String()+"/flights", &resp))
	assert.Equal(t, 2, resp.Count)

	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/runs/"+id.String()+"/flights?aircraft=B2", &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "KPDX", *resp.Flights[0].ArrivalAirport)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/runs/"+uuid.NewString()+"/flights", nil))
}

func TestDeleteRun(t *testing.T) {
	srv, id := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/runs/"+id.String(), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/runs/latest", nil))
}

func TestAirportEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var nearest airportResponse
	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/airports/nearest?lat=47.44&lon=-122.30", &nearest))
	assert.Equal(t, "KSEA", nearest.Identifier)
	assert.Less(t, nearest.DistanceNM, 1.0)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/airports/nearest?lat=0&lon=0", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/airports/nearest?lat=95&lon=0", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/v1/airports/nearest?lat=abc", nil))

	var airport airportResponse
	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/airports/KPDX", &airport))
	assert.Equal(t, 31, airport.Elevation)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/airports/ZZZZ", nil))
}

func TestSystemStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	var status map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/system/status", &status))
	assert.Equal(t, float64(2), status["airports_indexed"])

	dbStatus := status["database"].(map[string]interface{})
	assert.Equal(t, "sqlite", dbStatus["driver"])
	assert.Equal(t, true, dbStatus["healthy"])
}
