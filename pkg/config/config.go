package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/unklstewy/ads-flights/pkg/tracking"
)

// Config represents the complete application configuration.
type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Input        InputConfig        `json:"input"`
	Output       OutputConfig       `json:"output"`
	Segmentation SegmentationConfig `json:"segmentation"`
	Logging      LoggingConfig      `json:"logging"`

	// Workers is the number of aircraft segmented in parallel (0 = one per CPU)
	Workers int `json:"workers"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	// Driver is the database driver (postgres, sqlite)
	Driver string `json:"driver"`

	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// Path is the database file for the sqlite driver
	Path string `json:"path"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`
}

// Input sources.
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// InputConfig says where airports and events are read from.
type InputConfig struct {
	// Source is "file" or "database"
	Source string `json:"source"`

	// AirportsPath is a JSON or CSV airport list, optionally .zst compressed
	AirportsPath string `json:"airports_path"`

	// EventsPath is a JSON lines event capture, optionally .zst compressed
	EventsPath string `json:"events_path"`
}

// OutputConfig says where reconstructed flights go.
type OutputConfig struct {
	// FlightsPath is the output file; empty skips writing a file
	FlightsPath string `json:"flights_path"`

	// Format is "jsonl" or "msgpack"; empty infers it from FlightsPath
	Format string `json:"format"`

	// StoreInDatabase records each run and its flights in the database
	StoreInDatabase bool `json:"store_in_database"`
}

// SegmentationConfig tunes how tracks are split into flights.
type SegmentationConfig struct {
	// MaxAltitudeFt is the ceiling for a landing reversal
	MaxAltitudeFt float64 `json:"max_altitude_ft"`

	// GroundToleranceFt is the allowed gap between altitude and airport elevation
	GroundToleranceFt float64 `json:"ground_tolerance_ft"`

	// Step is the window advance in events
	Step int `json:"step"`

	// SampleSize is the window length in events
	SampleSize int `json:"sample_size"`

	// WindowAnchor is "first" (land on the window's first event) or "last"
	WindowAnchor string `json:"window_anchor"`
}

// LoggingConfig controls the optional rotating log file.
type LoggingConfig struct {
	// File is the log file path; empty logs to stderr only
	File string `json:"file"`

	// MaxSizeMB is the size at which the file is rotated
	MaxSizeMB int `json:"max_size_mb"`

	// MaxBackups is how many rotated files are kept
	MaxBackups int `json:"max_backups"`

	// Compress gzips rotated files
	Compress bool `json:"compress"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
// Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON over the defaults
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         5432,
			Database:     "adsflights",
			Username:     "adsflights",
			SSLMode:      "disable",
			Path:         "data/flights.db",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Input: InputConfig{
			Source:       SourceFile,
			AirportsPath: "data/airports.json",
			EventsPath:   "data/events.jsonl",
		},
		Output: OutputConfig{
			FlightsPath: "data/flights.jsonl",
		},
		Segmentation: SegmentationConfig{
			MaxAltitudeFt:     tracking.DefaultMaxAltitude,
			GroundToleranceFt: tracking.DefaultGroundTolerance,
			Step:              tracking.DefaultStep,
			SampleSize:        tracking.DefaultSampleSize,
			WindowAnchor:      string(tracking.AnchorFirst),
		},
		Logging: LoggingConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		Workers: 0, // one per CPU
	}
}

// Params converts the segmentation settings for the tracking package.
func (s SegmentationConfig) Params() tracking.Params {
	return tracking.Params{
		MaxAltitude:     s.MaxAltitudeFt,
		GroundTolerance: s.GroundToleranceFt,
		Step:            s.Step,
		SampleSize:      s.SampleSize,
		Anchor:          tracking.WindowAnchor(s.WindowAnchor),
	}
}

// FlightsFormat returns the configured output format, inferring it from the
// output path when none is set.
func (o OutputConfig) FlightsFormat() tracking.Format {
	if o.Format != "" {
		return tracking.Format(o.Format)
	}
	return tracking.FormatForPath(o.FlightsPath)
}

// Validate rejects configurations the tools cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Input.Source {
	case SourceFile, SourceDatabase:
	default:
		return fmt.Errorf("unknown input source %q", c.Input.Source)
	}

	switch tracking.Format(c.Output.Format) {
	case "", tracking.FormatJSONLines, tracking.FormatMsgpack:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	if err := c.Segmentation.Params().Validate(); err != nil {
		return fmt.Errorf("invalid segmentation settings: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows sensitive data like passwords to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("ADS_FLIGHTS_PORT"); port != "" {
		c.Server.Port = port
	}
	if driver := os.Getenv("ADS_FLIGHTS_DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dbHost := os.Getenv("ADS_FLIGHTS_DB_HOST"); dbHost != "" {
		c.Database.Host = dbHost
	}
	if dbPassword := os.Getenv("ADS_FLIGHTS_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if dbPath := os.Getenv("ADS_FLIGHTS_DB_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}
	if airports := os.Getenv("ADS_FLIGHTS_AIRPORTS"); airports != "" {
		c.Input.AirportsPath = airports
	}
	if events := os.Getenv("ADS_FLIGHTS_EVENTS"); events != "" {
		c.Input.EventsPath = events
	}
	if workers := os.Getenv("ADS_FLIGHTS_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			c.Workers = n
		}
	}
	if logFile := os.Getenv("ADS_FLIGHTS_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
}
