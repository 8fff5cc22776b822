package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/unklstewy/ads-flights/pkg/adsb"
)

// eventBatchSize is the number of events committed per transaction.
const eventBatchSize = 10000

// EventRepository stores raw ADS-B reports. It satisfies adsb.EventSource.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// InsertEvents appends events in batches of eventBatchSize rows per transaction.
// Returns the number of events stored before any error.
func (r *EventRepository) InsertEvents(ctx context.Context, events []adsb.Event) (int, error) {
	stored := 0
	for start := 0; start < len(events); start += eventBatchSize {
		end := min(start+eventBatchSize, len(events))
		if err := r.insertBatch(ctx, events[start:end]); err != nil {
			return stored, err
		}
		stored = end

		if len(events) > eventBatchSize {
			log.Printf("  Stored %d/%d events", stored, len(events))
		}
	}
	return stored, nil
}

func (r *EventRepository) insertBatch(ctx context.Context, batch []adsb.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO adsb_events (aircraft_identifier, timestamp, latitude, longitude, altitude_ft)
		 VALUES ($1, $2, $3, $4, $5)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range batch {
		_, err := stmt.ExecContext(ctx,
			ev.AircraftIdentifier, ev.Timestamp.UTC(),
			nullFloat(ev.Latitude), nullFloat(ev.Longitude), nullFloat(ev.Altitude),
		)
		if err != nil {
			return fmt.Errorf("failed to insert event for %s: %w", ev.AircraftIdentifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// ListEvents returns every stored event in insertion order.
func (r *EventRepository) ListEvents(ctx context.Context) ([]adsb.Event, error) {
	return r.queryEvents(ctx,
		`SELECT aircraft_identifier, timestamp, latitude, longitude, altitude_ft
		 FROM adsb_events
		 ORDER BY id`,
	)
}

// ListAircraftEvents returns one aircraft's events in insertion order.
func (r *EventRepository) ListAircraftEvents(ctx context.Context, identifier string) ([]adsb.Event, error) {
	return r.queryEvents(ctx,
		`SELECT aircraft_identifier, timestamp, latitude, longitude, altitude_ft
		 FROM adsb_events
		 WHERE aircraft_identifier = $1
		 ORDER BY id`,
		identifier,
	)
}

// Events implements adsb.EventSource.
func (r *EventRepository) Events(ctx context.Context) ([]adsb.Event, error) {
	return r.ListEvents(ctx)
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]adsb.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []adsb.Event
	for rows.Next() {
		var (
			ev            adsb.Event
			lat, lon, alt sql.NullFloat64
		)
		if err := rows.Scan(&ev.AircraftIdentifier, &ev.Timestamp, &lat, &lon, &alt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Timestamp = ev.Timestamp.UTC()
		ev.Latitude = floatPtr(lat)
		ev.Longitude = floatPtr(lon)
		ev.Altitude = floatPtr(alt)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
