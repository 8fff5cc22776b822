package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/internal/logging"
	"github.com/unklstewy/ads-flights/pkg/adsb"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
	"github.com/unklstewy/ads-flights/pkg/tracking"
)

// Flight reconstruction
// Groups ADS-B events by aircraft, splits each track into flights at landings
// near known airports and writes the flights out.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	flag.String("airports", "", "Airport list (JSON or CSV, optionally .zst)")
	flag.String("events", "", "ADS-B event capture (JSON lines, optionally .zst)")
	flag.String("output", "", "Flights output file")
	flag.String("format", "", "Output format: jsonl or msgpack (default: from file name)")
	flag.String("source", "", "Read airports and events from: file or database")
	flag.Bool("store", false, "Store the run and its flights in the database")
	flag.Int("workers", 0, "Aircraft segmented in parallel (0 = one per CPU)")
	flag.String("anchor", "", "Window end marking a landing: first or last")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := applyFlags(cfg); err != nil {
		log.Fatalf("Invalid flag: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logFile := logging.Setup(cfg.Logging)
	defer logFile.Close()

	log.Println("===========================================")
	log.Println("  ADS-B Flight Reconstruction")
	log.Println("===========================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := run(ctx, cfg)
	if err != nil {
		log.Fatalf("Reconstruction failed: %v", err)
	}

	log.Println("\n===========================================")
	log.Println("Reconstruction Complete")
	log.Println("===========================================")
	log.Printf("Aircraft: %d", summary.Aircraft)
	log.Printf("Flights:  %d", summary.Flights)
	log.Printf("Duration: %v", summary.Duration().Round(time.Millisecond))
	if summary.ID != uuid.Nil {
		log.Printf("Run ID:   %s", summary.ID)
	}
}

// applyFlags overrides configuration values with the flags given on the command line.
func applyFlags(cfg *config.Config) error {
	var errs []error
	flag.Visit(func(f *flag.Flag) {
		var err error
		value := f.Value.String()
		switch f.Name {
		case "airports":
			cfg.Input.AirportsPath = value
		case "events":
			cfg.Input.EventsPath = value
		case "output":
			cfg.Output.FlightsPath = value
		case "format":
			cfg.Output.Format = value
		case "source":
			cfg.Input.Source = value
		case "anchor":
			cfg.Segmentation.WindowAnchor = value
		case "store":
			cfg.Output.StoreInDatabase, err = strconv.ParseBool(value)
		case "workers":
			cfg.Workers, err = strconv.Atoi(value)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("-%s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// run executes one reconstruction described by cfg.
func run(ctx context.Context, cfg *config.Config) (db.RunSummary, error) {
	summary := db.RunSummary{
		StartedAt: time.Now().UTC(),
		Params:    cfg.Segmentation.Params(),
	}

	var database *db.DB
	if cfg.Input.Source == config.SourceDatabase || cfg.Output.StoreInDatabase {
		log.Println("Connecting to database...")
		conn, err := db.ReconnectWithRetry(ctx, cfg.Database, 3, time.Second)
		if err != nil {
			return summary, fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()
		if err := conn.InitSchema(ctx); err != nil {
			return summary, fmt.Errorf("failed to initialize schema: %w", err)
		}
		database = conn
		log.Println("✓ Database connected")
	}

	airportList, events, err := loadInputs(ctx, cfg, database)
	if err != nil {
		return summary, err
	}
	summary.Airports = len(airportList)
	summary.Events = len(events)
	log.Printf("Loaded %d airports and %d events", len(airportList), len(events))

	index := airports.NewIndex(airportList)
	log.Printf("✓ Indexed airports into %d grid cells", index.Cells())

	fleet := tracking.GroupByAircraft(events)
	summary.Aircraft = len(fleet)
	log.Printf("Identified %d aircraft", len(fleet))

	flights, err := tracking.Reconstruct(ctx, fleet, index, summary.Params, cfg.Workers)
	if err != nil {
		return summary, fmt.Errorf("failed to reconstruct flights: %w", err)
	}
	summary.Flights = len(flights)
	summary.FinishedAt = time.Now().UTC()
	log.Printf("Identified %d potential flights", len(flights))

	if path := cfg.Output.FlightsPath; path != "" {
		if err := tracking.SaveFlights(path, cfg.Output.FlightsFormat(), flights); err != nil {
			return summary, fmt.Errorf("failed to write flights: %w", err)
		}
		log.Printf("✓ Wrote flights to %s", path)
	}

	if cfg.Output.StoreInDatabase {
		repo := db.NewFlightRepository(database)
		err := db.WithRetry(ctx, func() error {
			id, err := repo.SaveRun(ctx, summary, flights)
			summary.ID = id
			return err
		}, 2)
		if err != nil {
			return summary, fmt.Errorf("failed to store run: %w", err)
		}
		log.Printf("✓ Stored run %s", summary.ID)
	}

	return summary, nil
}

// loadInputs reads airports and events from files or the database.
func loadInputs(ctx context.Context, cfg *config.Config, database *db.DB) ([]airports.Airport, []adsb.Event, error) {
	var (
		airportList []airports.Airport
		source      adsb.EventSource
		err         error
	)

	if cfg.Input.Source == config.SourceDatabase {
		airportList, err = db.NewAirportRepository(database).ListAirports(ctx)
		source = db.NewEventRepository(database)
	} else {
		airportList, err = airports.Load(cfg.Input.AirportsPath)
		source = adsb.NewFileSource(cfg.Input.EventsPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load airports: %w", err)
	}

	events, err := source.Events(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load events: %w", err)
	}
	return airportList, events, nil
}
