package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unklstewy/ads-flights/pkg/tracking"
)

// ErrRunNotFound is returned when no reconstruction run has the requested id.
var ErrRunNotFound = errors.New("reconstruction run not found")

// RunSummary describes one reconstruction and the settings it ran with.
type RunSummary struct {
	ID         uuid.UUID       `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Airports   int             `json:"airports"`
	Events     int             `json:"events"`
	Aircraft   int             `json:"aircraft"`
	Flights    int             `json:"flights"`
	Params     tracking.Params `json:"params"`
}

// Duration returns how long the run took.
func (r RunSummary) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FlightRepository stores reconstruction runs and their flights.
type FlightRepository struct {
	db *DB
}

// NewFlightRepository creates a new flight repository.
func NewFlightRepository(db *DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// SaveRun records a run and its flights in one transaction and returns the run id.
// A new id is generated when run.ID is unset; run.Flights is taken from flights.
func (r *FlightRepository) SaveRun(ctx context.Context, run RunSummary, flights []tracking.Flight) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.Flights = len(flights)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reconstruction_runs (
			id, started_at, finished_at,
			airport_count, event_count, aircraft_count, flight_count,
			max_altitude_ft, ground_tolerance_ft, step, sample_size, window_anchor
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID.String(), run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Airports, run.Events, run.Aircraft, run.Flights,
		run.Params.MaxAltitude, run.Params.GroundTolerance,
		run.Params.Step, run.Params.SampleSize, string(run.Params.Anchor),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO flights (
			run_id, seq, aircraft_identifier,
			departure_time, departure_airport, arrival_time, arrival_airport
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare flight insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range flights {
		_, err := stmt.ExecContext(ctx,
			run.ID.String(), i, f.AircraftIdentifier,
			nullTime(f.DepartureTime), nullString(f.DepartureAirport),
			nullTime(f.ArrivalTime), nullString(f.ArrivalAirport),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert flight %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `id, started_at, finished_at,
	airport_count, event_count, aircraft_count, flight_count,
	max_altitude_ft, ground_tolerance_ft, step, sample_size, window_anchor`

// ListRuns returns up to limit runs, most recent first. limit <= 0 returns all.
func (r *FlightRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM reconstruction_runs ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run, or ErrRunNotFound.
func (r *FlightRepository) GetRun(ctx context.Context, id uuid.UUID) (*RunSummary, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM reconstruction_runs WHERE id = $1`,
		id.String(),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LatestRun returns the most recently started run, or ErrRunNotFound.
func (r *FlightRepository) LatestRun(ctx context.Context) (*RunSummary, error) {
	runs, err := r.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

// ListFlights returns a run's flights in their original order, optionally
// restricted to one aircraft.
func (r *FlightRepository) ListFlights(ctx context.Context, runID uuid.UUID, aircraft string) ([]tracking.Flight, error) {
	query := `SELECT aircraft_identifier, departure_time, departure_airport, arrival_time, arrival_airport
		FROM flights
		WHERE run_id = $1`
	args := []interface{}{runID.String()}
	if aircraft != "" {
		query += ` AND aircraft_identifier = $2`
		args = append(args, aircraft)
	}
	query += ` ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []tracking.Flight
	for rows.Next() {
		var (
			f                      tracking.Flight
			depTime, arrTime       sql.NullTime
			depAirport, arrAirport sql.NullString
		)
		if err := rows.Scan(&f.AircraftIdentifier, &depTime, &depAirport, &arrTime, &arrAirport); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		f.DepartureTime = timePtr(depTime)
		f.DepartureAirport = stringPtr(depAirport)
		f.ArrivalTime = timePtr(arrTime)
		f.ArrivalAirport = stringPtr(arrAirport)
		flights = append(flights, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flights: %w", err)
	}
	return flights, nil
}

// DeleteRun removes a run and its flights.
func (r *FlightRepository) DeleteRun(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM flights WHERE run_id = $1`, id.String()); err != nil {
		return fmt.Errorf("failed to delete flights: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM reconstruction_runs WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (RunSummary, error) {
	var (
		run    RunSummary
		id     string
		anchor string
	)
	err := row.Scan(
		&id, &run.StartedAt, &run.FinishedAt,
		&run.Airports, &run.Events, &run.Aircraft, &run.Flights,
		&run.Params.MaxAltitude, &run.Params.GroundTolerance,
		&run.Params.Step, &run.Params.SampleSize, &anchor,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return run, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	run.ID = parsed
	run.Params.Anchor = tracking.WindowAnchor(anchor)
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	return run, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time.UTC()
	return &t
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}
