package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
	"github.com/unklstewy/ads-flights/pkg/coordinates"
)

// Interactive nearest-airport lookup over the same grid index the
// reconstruction uses.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	airportsPath := flag.String("airports", "", "Airport list (default: input.airports_path)")
	fromDB := flag.Bool("db", false, "Read airports from the database")
	lat := flag.Float64("lat", math.NaN(), "Initial query latitude")
	lon := flag.Float64("lon", math.NaN(), "Initial query longitude")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *airportsPath != "" {
		cfg.Input.AirportsPath = *airportsPath
	}

	list, source, err := loadAirports(cfg, *fromDB)
	if err != nil {
		log.Fatalf("Failed to load airports: %v", err)
	}

	var start coordinates.GeoPoint
	if !math.IsNaN(*lat) && !math.IsNaN(*lon) {
		start = coordinates.NewGeoPoint(*lat, *lon)
	}

	app := NewApp(airports.NewIndex(list), source, start)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func loadAirports(cfg *config.Config, fromDB bool) ([]airports.Airport, string, error) {
	if !fromDB {
		list, err := airports.Load(cfg.Input.AirportsPath)
		return list, cfg.Input.AirportsPath, err
	}

	database, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, "", err
	}
	defer database.Close()

	list, err := db.NewAirportRepository(database).ListAirports(context.Background())
	return list, "database", err
}
