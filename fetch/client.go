// Package fetch implements the resilient HTTP client: bounded request
// attempts with a flat pacing delay, linear backoff after transport
// failures, and a fixed outbound identity drawn at construction time.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-toolkit/config"
)

// defaultHeaders are applied to every request unless overridden per
// call. Accept-Encoding is left to the transport so gzip bodies are
// decoded transparently.
var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "pt-BR,pt;q=0.9,en;q=0.8",
	"Connection":      "keep-alive",
}

// Result holds a successful fetch outcome: the first attempt that
// returned status 200.
type Result struct {
	URL        string
	StatusCode int
	Body       []byte
	Headers    http.Header
	Duration   time.Duration
	Attempts   int
}

// Options carries per-call request overrides.
type Options struct {
	Headers http.Header
	Body    []byte
}

// Client issues HTTP requests through a colly collector. The outbound
// identity is drawn once from the provider at construction and reused
// for every request. A Client confines mutable session state to a
// single instance and must not be shared across goroutines without
// external synchronization.
type Client struct {
	cfg       *config.Config
	collector *colly.Collector
	identity  string
	logger    *slog.Logger
	metrics   *Metrics

	// attempt state written by the collector hooks; valid only for
	// the duration of a single attempt.
	lastResponse *colly.Response
}

// NewClient builds a fetch client from cfg. A nil logger falls back
// to slog.Default; metrics may be nil.
func NewClient(cfg *config.Config, identities *IdentityProvider, logger *slog.Logger, metrics *Metrics) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	identity := identities.Identity()

	collector := colly.NewCollector(
		colly.UserAgent(identity),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	c := &Client{
		cfg:       cfg,
		collector: collector,
		identity:  identity,
		logger:    logger,
		metrics:   metrics,
	}

	collector.OnResponse(func(r *colly.Response) {
		c.lastResponse = r
	})

	return c
}

// Identity returns the identity string fixed at construction.
func (c *Client) Identity() string {
	return c.identity
}

// Fetch issues a GET request with the bounded retry policy.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil)
}

// Do performs up to MaxRetries attempts against rawURL. Every attempt
// is preceded by the flat pacing delay; a transport-level failure with
// attempts remaining additionally sleeps delay multiplied by the
// attempt index. The first 200 response returns immediately. Invalid
// input returns a MalformedRequestError without touching the network;
// running out of attempts returns an ExhaustedError.
func (c *Client) Do(ctx context.Context, method, rawURL string, opts *Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if method == "" {
		method = http.MethodGet
	}
	if err := validateRequest(method, rawURL); err != nil {
		return nil, err
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := sleepCtx(ctx, c.cfg.Delay); err != nil {
			lastErr = err
			break
		}
		attempts = attempt

		start := time.Now()
		resp, err := c.attempt(method, rawURL, opts)
		elapsed := time.Since(start)
		c.metrics.ObserveDuration(elapsed)

		if err != nil {
			c.metrics.IncAttempt("transport")
			c.logger.Warn("request attempt failed",
				slog.String("url", rawURL),
				slog.Int("attempt", attempt),
				slog.String("category", errorLabel(err)),
				slog.Any("error", err),
			)
			lastErr = err
			if attempt < c.cfg.MaxRetries {
				c.metrics.IncBackoff()
				if err := sleepCtx(ctx, c.cfg.Delay*time.Duration(attempt)); err != nil {
					lastErr = err
					break
				}
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			c.metrics.IncAttempt("success")
			return &Result{
				URL:        resp.Request.URL.String(),
				StatusCode: resp.StatusCode,
				Body:       append([]byte(nil), resp.Body...),
				Headers:    cloneHeaders(resp.Headers),
				Duration:   elapsed,
				Attempts:   attempt,
			}, nil
		}

		// Non-200 statuses retry on the pacing delay alone.
		c.metrics.IncAttempt("status")
		c.logger.Warn("non-200 status",
			slog.Int("status", resp.StatusCode),
			slog.String("url", rawURL),
			slog.Int("attempt", attempt),
		)
		lastErr = fmt.Errorf("http status %d", resp.StatusCode)
	}

	c.metrics.IncExhausted()
	c.logger.Error("request exhausted",
		slog.String("url", rawURL),
		slog.Int("attempts", attempts),
		slog.Any("error", lastErr),
	)
	return nil, &ExhaustedError{URL: rawURL, Attempts: attempts, Last: lastErr}
}

func (c *Client) attempt(method, rawURL string, opts *Options) (*colly.Response, error) {
	c.lastResponse = nil

	var body io.Reader
	if opts != nil && len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	if err := c.collector.Request(method, rawURL, body, nil, c.buildHeaders(opts)); err != nil {
		return nil, err
	}
	if c.lastResponse == nil {
		return nil, fmt.Errorf("no response received for %s", rawURL)
	}
	return c.lastResponse, nil
}

func (c *Client) buildHeaders(opts *Options) http.Header {
	hdr := http.Header{}
	for key, value := range defaultHeaders {
		hdr.Set(key, value)
	}
	hdr.Set("User-Agent", c.identity)
	if opts != nil {
		for key, values := range opts.Headers {
			hdr.Del(key)
			for _, v := range values {
				hdr.Add(key, v)
			}
		}
	}
	return hdr
}

func validateRequest(method, rawURL string) error {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodHead,
		http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return &MalformedRequestError{URL: rawURL, Reason: fmt.Sprintf("unsupported method %q", method)}
	}
	if rawURL == "" {
		return &MalformedRequestError{URL: rawURL, Reason: "empty url"}
	}
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return &MalformedRequestError{URL: rawURL, Reason: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &MalformedRequestError{URL: rawURL, Reason: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}
	if parsed.Host == "" {
		return &MalformedRequestError{URL: rawURL, Reason: "missing host"}
	}
	return nil
}

func cloneHeaders(h *http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
