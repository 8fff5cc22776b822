package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/unklstewy/ads-flights/internal/db"
	"github.com/unklstewy/ads-flights/pkg/airports"
	"github.com/unklstewy/ads-flights/pkg/config"
	"github.com/unklstewy/ads-flights/pkg/coordinates"
	"github.com/unklstewy/ads-flights/pkg/tracking"
)

// Server holds the HTTP router and its dependencies
type Server struct {
	router  *chi.Mux
	db      *db.DB
	runs    *db.FlightRepository
	index   *airports.Index
	cfg     *config.Config
	started time.Time
}

// NewServer wires the API routes.
func NewServer(cfg *config.Config, database *db.DB, index *airports.Index) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		db:      database,
		runs:    db.NewFlightRepository(database),
		index:   index,
		cfg:     cfg,
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	// Read-only API, open to any origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Reconstruction runs
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/latest", s.handleLatestRun)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
		r.Get("/runs/{id}/flights", s.handleListFlights)

		// Airports
		r.Get("/airports/nearest", s.handleNearestAirport)
		r.Get("/airports/{ident}", s.handleGetAirport)

		// System endpoints
		r.Get("/system/status", s.handleGetSystemStatus)
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []db.RunSummary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.LatestRun(r.Context())
	s.respondRun(w, run, err)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}
	run, err := s.runs.GetRun(r.Context(), id)
	s.respondRun(w, run, err)
}

func (s *Server) respondRun(w http.ResponseWriter, run *db.RunSummary, err error) {
	if errors.Is(err, db.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error loading run: %v", err)
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	err := s.runs.DeleteRun(r.Context(), id)
	if errors.Is(err, db.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error deleting run %s: %v", id, err)
		http.Error(w, "Failed to delete run", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (s *Server) handleListFlights(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	if _, err := s.runs.GetRun(r.Context(), id); err != nil {
		s.respondRun(w, nil, err)
		return
	}

	aircraft := r.URL.Query().Get("aircraft")
	flights, err := s.runs.ListFlights(r.Context(), id, aircraft)
	if err != nil {
		log.Printf("Error listing flights for run %s: %v", id, err)
		http.Error(w, "Failed to list flights", http.StatusInternalServerError)
		return
	}
	if flights == nil {
		flights = []tracking.Flight{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  id,
		"flights": flights,
		"count":   len(flights),
	})
}

// airportResponse is an airport with its distance from the query point.
type airportResponse struct {
	Identifier string  `json:"identifier"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Elevation  int     `json:"elevation"`
	DistanceNM float64 `json:"distance_nm,omitempty"`
}

func newAirportResponse(a airports.Airport) airportResponse {
	return airportResponse{
		Identifier: a.Identifier,
		Latitude:   a.Location.Latitude,
		Longitude:  a.Location.Longitude,
		Elevation:  a.Elevation,
	}
}

func (s *Server) handleNearestAirport(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		http.Error(w, "lat and lon must be valid decimal degrees", http.StatusBadRequest)
		return
	}

	query := coordinates.NewGeoPoint(lat, lon)
	airport, ok := s.index.Nearest(query)
	if !ok {
		http.Error(w, "No airport near this position", http.StatusNotFound)
		return
	}

	resp := newAirportResponse(airport)
	resp.DistanceNM = coordinates.DistanceNauticalMiles(query, airport.Location)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAirport(w http.ResponseWriter, r *http.Request) {
	airport, ok := s.index.Lookup(chi.URLParam(r, "ident"))
	if !ok {
		http.Error(w, "Airport not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, newAirportResponse(airport))
}

func (s *Server) handleGetSystemStatus(w http.ResponseWriter, r *http.Request) {
	healthy := db.HealthCheck(r.Context(), s.db)

	status := map[string]interface{}{
		"database": map[string]interface{}{
			"driver":  s.db.Driver(),
			"healthy": healthy,
		},
		"airports_indexed": s.index.Len(),
		"grid_cells":       s.index.Cells(),
		"uptime_seconds":   int(time.Since(s.started).Seconds()),
	}

	if healthy {
		if stats, err := s.db.GetStats(r.Context()); err == nil {
			status["counts"] = stats
		}
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

// runID parses the {id} URL parameter, answering 400 when it is not a UUID.
func runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid run ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
