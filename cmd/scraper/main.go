package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-toolkit/analyze"
	"github.com/aluiziolira/go-scrape-toolkit/config"
	"github.com/aluiziolira/go-scrape-toolkit/fetch"
	"github.com/aluiziolira/go-scrape-toolkit/models"
	"github.com/aluiziolira/go-scrape-toolkit/pipeline"
	"github.com/aluiziolira/go-scrape-toolkit/sink"
	"github.com/aluiziolira/go-scrape-toolkit/sources"
)

func main() {
	defaultCfg := config.DefaultConfig()
	retriesDefault := defaultCfg.MaxRetries
	if value, ok, err := config.EnvInt("SCRAPER_RETRIES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_RETRIES: %v\n", err)
		os.Exit(1)
	} else if ok {
		retriesDefault = value
	}
	outputDefault := defaultCfg.OutputPath
	if value, ok := config.EnvString("SCRAPER_OUTPUT"); ok {
		outputDefault = value
	}
	formatDefault := defaultCfg.OutputFormat
	if value, ok := config.EnvString("SCRAPER_FORMAT"); ok {
		formatDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	delayMs := flag.Int("delay", int(defaultCfg.Delay/time.Millisecond), "Pacing delay before each request attempt (milliseconds)")
	timeoutMs := flag.Int("timeout", int(defaultCfg.Timeout/time.Millisecond), "Request timeout (milliseconds)")
	maxRetries := flag.Int("max-retries", retriesDefault, "Maximum attempts per URL")
	rotateIdentity := flag.Bool("rotate-identity", defaultCfg.RotateIdentity, "Rotate the client identity per run")
	outputFormat := flag.String("format", formatDefault, "Output format: csv, json, xlsx, or sqlite")
	outputPath := flag.String("output", outputDefault, "Output directory")
	dedupeSize := flag.Int("dedupe-size", defaultCfg.DedupeMaxSize, "Maximum URLs tracked for de-duplication")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	probeURL := flag.String("probe", "", "Optional URL fetched before the run to verify connectivity")
	location := flag.String("location", "São Paulo", "Job search location")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := buildConfigFromFlags(*delayMs, *timeoutMs, *maxRetries, *rotateIdentity, *outputFormat, *outputPath, *dedupeSize, *metricsAddr, *verbose)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := fetch.NewMetrics()
	client := fetch.NewClient(cfg, fetch.NewIdentityProvider(cfg.RotateIdentity), logger, metrics)

	slog.Info("starting collection run",
		slog.String("format", cfg.OutputFormat),
		slog.String("output", cfg.OutputPath),
		slog.String("identity", client.Identity()),
	)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	if *probeURL != "" {
		result, err := client.Fetch(ctx, *probeURL)
		if err != nil {
			slog.Error("connectivity probe failed", slog.String("url", *probeURL), slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("connectivity probe ok",
			slog.String("url", result.URL),
			slog.Int("status", result.StatusCode),
			slog.Duration("duration", result.Duration),
		)
	}

	out, err := sink.New(cfg, logger)
	if err != nil {
		slog.Error("initialising sink", slog.Any("error", err))
		os.Exit(1)
	}

	startTime := time.Now()

	jobs := collect(cfg, logger, sources.Jobs([]string{"Python", "Django", "JavaScript"}, *location), "title", "url")
	out.Persist(jobs, "jobs_data")

	products := collect(cfg, logger, sources.Products([]string{"eletrônicos", "roupas", "casa"}), "name", "url")
	out.Persist(products, "products_data")

	news := collect(cfg, logger, sources.News([]string{"Python", "IA", "Tecnologia"}), "title", "url")
	out.Persist(news, "news_data")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(jobs, products, news, time.Since(startTime), cfg.OutputPath)
}

// collect runs a batch through a fresh pipeline collector, enforcing
// the dataset's required fields and dropping duplicate URLs.
func collect(cfg *config.Config, logger *slog.Logger, batch models.Batch, required ...string) models.Batch {
	collector, err := pipeline.New(cfg, logger, required...)
	if err != nil {
		slog.Error("initialising collector", slog.Any("error", err))
		os.Exit(1)
	}
	collector.CollectAll(batch...)
	if stats := collector.Stats(); stats.Duplicates > 0 || stats.Invalid > 0 {
		slog.Warn("records dropped",
			slog.Int("duplicates", stats.Duplicates),
			slog.Int("invalid", stats.Invalid),
		)
	}
	return collector.Drain()
}

func buildConfigFromFlags(delayMs, timeoutMs, maxRetries int, rotateIdentity bool, outputFormat, outputPath string, dedupeSize int, metricsAddr string, verbose bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Delay = time.Duration(delayMs) * time.Millisecond
	cfg.Timeout = time.Duration(timeoutMs) * time.Millisecond
	cfg.MaxRetries = maxRetries
	cfg.RotateIdentity = rotateIdentity
	cfg.OutputFormat = strings.ToLower(outputFormat)
	cfg.OutputPath = outputPath
	cfg.DedupeMaxSize = dedupeSize
	cfg.MetricsAddr = metricsAddr
	cfg.Verbose = verbose
	return cfg
}

func printSummary(jobs, products, news models.Batch, duration time.Duration, outputPath string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Collection complete")
	fmt.Printf("  Jobs:          %d\n", len(jobs))
	fmt.Printf("  Products:      %d\n", len(products))
	fmt.Printf("  News:          %d\n", len(news))
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Output dir:    %s\n", outputPath)

	if !jobs.Empty() {
		report := analyze.New(jobs).AnalyzeTextField("title")
		fmt.Println("  Job titles:")
		fmt.Printf("    Avg length:  %.1f chars\n", report.AverageLength)
		top := report.MostCommonWords
		if len(top) > 5 {
			top = top[:5]
		}
		words := make([]string, len(top))
		for i, w := range top {
			words[i] = fmt.Sprintf("%s(%d)", w.Word, w.Count)
		}
		fmt.Printf("    Top words:   %s\n", strings.Join(words, " "))
	}
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
