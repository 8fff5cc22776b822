package db

import (
	"context"
	"fmt"

	"github.com/unklstewy/ads-flights/pkg/airports"
)

// AirportRepository stores the reference airport list.
type AirportRepository struct {
	db *DB
}

// NewAirportRepository creates a new airport repository.
func NewAirportRepository(db *DB) *AirportRepository {
	return &AirportRepository{db: db}
}

// UpsertAirports inserts airports, replacing any stored under the same identifier.
// Returns the number of rows written.
func (r *AirportRepository) UpsertAirports(ctx context.Context, list []airports.Airport) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO airports (identifier, latitude, longitude, elevation_ft)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (identifier) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			elevation_ft = EXCLUDED.elevation_ft`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare airport insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, a := range list {
		if !a.Location.Valid() {
			continue
		}
		if _, err := stmt.ExecContext(ctx, a.Identifier, a.Location.Latitude, a.Location.Longitude, a.Elevation); err != nil {
			return 0, fmt.Errorf("failed to upsert airport %s: %w", a.Identifier, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit airports: %w", err)
	}
	return written, nil
}

// ListAirports returns every stored airport ordered by identifier.
func (r *AirportRepository) ListAirports(ctx context.Context) ([]airports.Airport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT identifier, latitude, longitude, elevation_ft
		 FROM airports
		 ORDER BY identifier`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	var list []airports.Airport
	for rows.Next() {
		var (
			id        string
			lat, lon  float64
			elevation int
		)
		if err := rows.Scan(&id, &lat, &lon, &elevation); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		list = append(list, airports.New(id, lat, lon, elevation))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating airports: %w", err)
	}
	return list, nil
}
