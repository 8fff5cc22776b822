package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
	"github.com/unklstewy/ads-flights/pkg/tracking"
)

// Flight browser
// Pages through reconstructed flights from an output file or a stored run.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	flightsPath := flag.String("flights", "", "Flights file to browse (default: output.flights_path)")
	runFlag := flag.String("run", "", "Browse a stored run instead of a file (\"latest\" or a run ID)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		flights []tracking.Flight
		source  string
	)
	if *runFlag != "" {
		flights, source, err = loadRun(cfg, *runFlag)
	} else {
		path := *flightsPath
		if path == "" {
			path = cfg.Output.FlightsPath
		}
		flights, err = tracking.LoadFlights(path)
		source = path
	}
	if err != nil {
		log.Fatalf("Failed to load flights: %v", err)
	}

	// Airport details are optional
	var index *airports.Index
	if list, err := airports.Load(cfg.Input.AirportsPath); err == nil {
		index = airports.NewIndex(list)
	}

	m := newModel(flights, index, source)

	// Start TUI
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadRun reads the flights of a stored run.
func loadRun(cfg *config.Config, which string) ([]tracking.Flight, string, error) {
	ctx := context.Background()

	database, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, "", err
	}
	defer database.Close()

	repo := db.NewFlightRepository(database)

	var run *db.RunSummary
	if which == "latest" {
		run, err = repo.LatestRun(ctx)
	} else {
		id, parseErr := uuid.Parse(which)
		if parseErr != nil {
			return nil, "", fmt.Errorf("invalid run ID %q: %w", which, parseErr)
		}
		run, err = repo.GetRun(ctx, id)
	}
	if err != nil {
		return nil, "", err
	}

	flights, err := repo.ListFlights(ctx, run.ID, "")
	if err != nil {
		return nil, "", err
	}
	return flights, fmt.Sprintf("run %s (%s)", run.ID, run.StartedAt.Format("2006-01-02 15:04")), nil
}
