// Package sink persists record batches to one of the supported
// output formats: csv, json, xlsx workbook, or a sqlite database.
// Persistence is best-effort: failures are logged and absorbed so a
// single bad batch never terminates a run.
package sink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aluiziolira/go-scrape-toolkit/config"
	"github.com/aluiziolira/go-scrape-toolkit/models"
)

// TableName is the fixed table written by the sqlite format. Two
// batches persisted to the same database file overwrite each other.
const TableName = "scraped_data"

var extensions = map[string]string{
	config.FormatCSV:    "csv",
	config.FormatJSON:   "json",
	config.FormatXLSX:   "xlsx",
	config.FormatSQLite: "db",
}

// Sink writes record batches under the configured output directory in
// the configured format. A Sink holds no mutable state between calls.
type Sink struct {
	format string
	dir    string
	logger *slog.Logger
}

// New builds a sink from cfg. A nil logger falls back to slog.Default.
func New(cfg *config.Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := extensions[cfg.OutputFormat]; !ok {
		return nil, fmt.Errorf("unsupported output format %q", cfg.OutputFormat)
	}
	return &Sink{
		format: cfg.OutputFormat,
		dir:    cfg.OutputPath,
		logger: logger,
	}, nil
}

// Persist writes the batch as <dir>/<baseName>.<ext>, creating the
// output directory first. An empty batch logs a warning and performs
// no I/O. Any write or serialization failure is logged with its cause
// and absorbed; callers needing a hard success signal must verify the
// written file themselves.
func (s *Sink) Persist(batch models.Batch, baseName string) {
	if batch.Empty() {
		s.logger.Warn("no records to persist", slog.String("base_name", baseName))
		return
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("create output directory",
			slog.String("dir", s.dir),
			slog.Any("error", err),
		)
		return
	}

	path := filepath.Join(s.dir, baseName+"."+extensions[s.format])

	var err error
	switch s.format {
	case config.FormatCSV:
		err = writeCSV(path, batch)
	case config.FormatJSON:
		err = writeJSON(path, batch)
	case config.FormatXLSX:
		err = writeXLSX(path, batch)
	case config.FormatSQLite:
		err = writeSQLite(path, batch)
	}
	if err != nil {
		s.logger.Error("persist batch",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Info("batch persisted",
		slog.String("path", path),
		slog.Int("records", len(batch)),
	)
}
