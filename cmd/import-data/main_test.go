package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/pkg/config"
	"github.com/unklstewy/ads-flights/pkg/datafile"
)

func TestImporter(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	database, err := db.Connect(config.DatabaseConfig{Driver: db.DriverSQLite, Path: filepath.Join(dir, "import.db")})
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.InitSchema(ctx))

	airportsPath := filepath.Join(dir, "airports.csv")
	require.NoError(t, os.WriteFile(airportsPath,
		[]byte("ident,latitude_deg,longitude_deg,elevation_ft\nKSEA,47.4502,-122.3088,433\nKBFI,47.53,-122.302,21\n"), 0644))

	eventsPath := filepath.Join(dir, "events.jsonl")
	require.NoError(t, os.WriteFile(eventsPath, []byte(
		`{"identifier":"N1","timestamp":"2024-05-01T06:00:00Z","altitude":100}`+"\n"+
			`{"identifier":"N1","timestamp":"2024-05-01T06:01:00Z","latitude":47.5,"longitude":-122.3}`+"\n"), 0644))

	importer := &Importer{db: database}

	n, err := importer.ImportAirports(ctx, airportsPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = importer.ImportEvents(ctx, eventsPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = importer.ImportEvents(ctx, filepath.Join(dir, "missing.jsonl"))
	assert.True(t, errors.Is(err, datafile.ErrMissingSource))

	stats, err := database.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["airports"])
	assert.Equal(t, int64(2), stats["events"])
}
