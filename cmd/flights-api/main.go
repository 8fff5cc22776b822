// ADS-B Flights API
// Serves reconstruction runs, their flights and nearest-airport lookups over REST.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/internal/logging"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	port       = flag.String("port", "", "HTTP server port (default: server.port)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logFile := logging.Setup(cfg.Logging)
	defer logFile.Close()

	log.Println("🚀 Starting ADS-B Flights API...")

	// Connect to database
	ctx := context.Background()
	database, err := db.ReconnectWithRetry(ctx, cfg.Database, 5, 2*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	if err := database.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("✅ Connected to database")

	index, err := loadIndex(ctx, cfg, database)
	if err != nil {
		log.Fatalf("Failed to load airports: %v", err)
	}
	log.Printf("🛬 Indexed %d airports", index.Len())

	srv := NewServer(cfg, database, index)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("📡 Server listening on http://%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n👋 Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped")
}

// loadIndex builds the airport index from the database, falling back to the
// configured airport file when the database holds none.
func loadIndex(ctx context.Context, cfg *config.Config, database *db.DB) (*airports.Index, error) {
	list, err := db.NewAirportRepository(database).ListAirports(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 && cfg.Input.AirportsPath != "" {
		log.Printf("No airports in database, reading %s", cfg.Input.AirportsPath)
		list, err = airports.Load(cfg.Input.AirportsPath)
		if err != nil {
			return nil, err
		}
	}
	return airports.NewIndex(list), nil
}
