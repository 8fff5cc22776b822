package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/internal/logging"
	"github.com/unklstewy/ads-flights/pkg/adsb"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
)

// Data Importer
// Loads an airport list and an ADS-B event capture into the database so that
// reconstruction can run with input.source = "database".
//
// Airports: JSON array or OurAirports-style CSV (airports.csv from
// https://ourairports.com/data/). Events: JSON lines. Either may be .zst compressed.

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	airportsPath := flag.String("airports", "", "Airport list to import (default: input.airports_path)")
	eventsPath := flag.String("events", "", "Event capture to import (default: input.events_path)")
	skipAirports := flag.Bool("skip-airports", false, "Do not import airports")
	skipEvents := flag.Bool("skip-events", false, "Do not import events")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *airportsPath != "" {
		cfg.Input.AirportsPath = *airportsPath
	}
	if *eventsPath != "" {
		cfg.Input.EventsPath = *eventsPath
	}

	logFile := logging.Setup(cfg.Logging)
	defer logFile.Close()

	log.Println("===========================================")
	log.Println("  ADS-B Data Importer")
	log.Println("===========================================")

	// Connect to database
	ctx := context.Background()
	log.Println("Connecting to database...")
	database, err := db.ReconnectWithRetry(ctx, cfg.Database, 3, time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("✓ Database connected")

	// Initialize schema
	if err := database.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("✓ Schema initialized")

	importer := &Importer{db: database}

	airportCount := 0
	if !*skipAirports {
		log.Println("\n===========================================")
		log.Println("Importing Airports")
		log.Println("===========================================")

		airportCount, err = importer.ImportAirports(ctx, cfg.Input.AirportsPath)
		if err != nil {
			log.Printf("Warning: Failed to import airports: %v", err)
		} else {
			log.Printf("✓ Imported %d airports", airportCount)
		}
	}

	eventCount := 0
	if !*skipEvents {
		log.Println("\n===========================================")
		log.Println("Importing Events")
		log.Println("===========================================")

		eventCount, err = importer.ImportEvents(ctx, cfg.Input.EventsPath)
		if err != nil {
			log.Printf("Warning: Failed to import events: %v", err)
		} else {
			log.Printf("✓ Imported %d events", eventCount)
		}
	}

	// Summary
	log.Println("\n===========================================")
	log.Println("Import Complete")
	log.Println("===========================================")
	log.Printf("Total airports: %d", airportCount)
	log.Printf("Total events: %d", eventCount)

	if stats, err := database.GetStats(ctx); err == nil {
		log.Printf("Database now holds %v airports and %v events", stats["airports"], stats["events"])
	}
}

// Importer copies input files into the database.
type Importer struct {
	db *db.DB
}

// ImportAirports loads an airport file and upserts it.
func (i *Importer) ImportAirports(ctx context.Context, path string) (int, error) {
	list, err := airports.Load(path)
	if err != nil {
		return 0, err
	}
	log.Printf("Read %d airports from %s", len(list), path)

	repo := db.NewAirportRepository(i.db)
	var count int
	err = db.WithRetry(ctx, func() error {
		n, err := repo.UpsertAirports(ctx, list)
		count = n
		return err
	}, 2)
	return count, err
}

// ImportEvents loads an event capture and appends it.
func (i *Importer) ImportEvents(ctx context.Context, path string) (int, error) {
	events, err := adsb.NewFileSource(path).Events(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("Read %d events from %s", len(events), path)

	return db.NewEventRepository(i.db).InsertEvents(ctx, events)
}
