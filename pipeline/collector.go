// Package pipeline collects validated records into batches, dropping
// duplicates by URL before batches reach a sink.
package pipeline

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-toolkit/config"
	"github.com/aluiziolira/go-scrape-toolkit/models"
	"github.com/aluiziolira/go-scrape-toolkit/parser"
)

// urlField is the record field used for de-duplication. Records
// without it are collected as-is.
const urlField = "url"

// Stats is a snapshot of the collector counters.
type Stats struct {
	Accepted   int
	Duplicates int
	Invalid    int
}

// Collector accumulates records for one batch. URLs already seen are
// dropped; the seen set is bounded, so under heavy eviction a URL may
// be admitted twice. Collector is synchronous and not safe for
// concurrent use.
type Collector struct {
	seen     *lru.Cache[string, struct{}]
	required []string
	records  models.Batch
	stats    Stats
	logger   *slog.Logger
}

// New builds a collector. Records must carry a non-empty value for
// every required field to be accepted. A nil logger falls back to
// slog.Default.
func New(cfg *config.Config, logger *slog.Logger, required ...string) (*Collector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	seen, err := lru.New[string, struct{}](cfg.DedupeMaxSize)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}
	return &Collector{
		seen:     seen,
		required: required,
		logger:   logger,
	}, nil
}

// Collect validates the record, drops it when its URL was already
// seen, and otherwise appends it to the current batch. It reports
// whether the record was accepted.
func (c *Collector) Collect(record *models.Record) bool {
	if err := parser.ValidateRecord(record, c.required...); err != nil {
		c.stats.Invalid++
		c.logger.Warn("record rejected", slog.Any("error", err))
		return false
	}

	if value, ok := record.Get(urlField); ok && !value.IsNull() {
		url := value.Text()
		if _, dup := c.seen.Get(url); dup {
			c.stats.Duplicates++
			c.logger.Debug("duplicate record skipped", slog.String("url", url))
			return false
		}
		c.seen.Add(url, struct{}{})
	}

	c.records = append(c.records, record)
	c.stats.Accepted++
	return true
}

// CollectAll runs Collect over each record and returns how many were
// accepted.
func (c *Collector) CollectAll(records ...*models.Record) int {
	accepted := 0
	for _, record := range records {
		if c.Collect(record) {
			accepted++
		}
	}
	return accepted
}

// Drain returns the accumulated batch and starts a new one. The seen
// set is kept, so records drained earlier still block duplicates.
func (c *Collector) Drain() models.Batch {
	batch := c.records
	c.records = nil
	return batch
}

// Stats returns a snapshot of the collector counters.
func (c *Collector) Stats() Stats {
	return c.stats
}
