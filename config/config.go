// Package config defines the scraping toolkit configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Output format names recognized by the sink.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Config holds the scraping run configuration. It is built once per
// run and shared read-only by the fetch client and the record sink.
type Config struct {
	Delay          time.Duration // pacing delay before every request attempt
	Timeout        time.Duration
	MaxRetries     int
	RotateIdentity bool
	OutputFormat   string // csv, json, xlsx, or sqlite
	OutputPath     string
	DedupeMaxSize  int
	MetricsAddr    string
	Verbose        bool
}

// DefaultConfig returns conservative defaults matching the demo run.
func DefaultConfig() *Config {
	return &Config{
		Delay:          time.Second,
		Timeout:        10 * time.Second,
		MaxRetries:     3,
		RotateIdentity: true,
		OutputFormat:   FormatCSV,
		OutputPath:     "scraped_data",
		DedupeMaxSize:  10000,
		MetricsAddr:    "",
		Verbose:        false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	switch c.OutputFormat {
	case FormatCSV, FormatJSON, FormatXLSX, FormatSQLite:
	default:
		return fmt.Errorf("output format must be csv, json, xlsx, or sqlite")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	return nil
}

// EnvInt reads an integer environment override.
func EnvInt(name string) (int, bool, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, true, nil
}

// EnvString reads a string environment override.
func EnvString(name string) (string, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
