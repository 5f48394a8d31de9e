package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	"liftplan/internal/logging"
)

const (
	// DefaultUserAgent identifies the scraper to remote sites.
	DefaultUserAgent = "Mozilla/5.0 (compatible; AIWorkoutAnalyzer/1.0; +http://localhost)"
	// DefaultTimeout bounds a single fetch attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultRetries is the number of additional attempts after a failure.
	DefaultRetries = 1

	maxBodyBytes   = 5 << 20
	timeoutMessage = "Timeout exceeded"
)

// Config controls fetch behaviour.
type Config struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
}

// Result is the outcome of scraping one URL.
type Result struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Scraper fetches pages concurrently.
type Scraper struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the HTTP client used for fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Scraper, filling zero config fields with defaults.
func New(cfg Config, opts ...Option) *Scraper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	s := &Scraper{
		cfg:    cfg,
		client: &http.Client{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "scraper")
	return s
}

// ScrapeWorkouts fetches every URL concurrently and returns results in input
// order. Failures are reported per URL; the batch itself never fails.
func (s *Scraper) ScrapeWorkouts(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = s.scrapeWithRetry(ctx, url)
		}(i, url)
	}
	wg.Wait()

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}
	logging.WithContext(ctx, s.logger).Info("scrape batch complete",
		logging.Int("urls", len(urls)),
		logging.Int("succeeded", succeeded),
	)
	return results
}

func (s *Scraper) scrapeWithRetry(ctx context.Context, url string) Result {
	logger := logging.WithContext(ctx, s.logger)
	var result Result
	for attempt := 1; attempt <= s.cfg.Retries+1; attempt++ {
		result = s.scrapeOnce(ctx, url)
		if result.Success {
			return result
		}
		logger.Warn("scrape attempt failed",
			logging.String(logging.FieldURL, url),
			logging.Int("attempt", attempt),
			logging.String("reason", result.Error),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return result
}

func (s *Scraper) scrapeOnce(ctx context.Context, url string) Result {
	content, err := s.fetch(ctx, url)
	if err != nil {
		return Result{URL: url, Success: false, Error: failureMessage(ctx, err)}
	}
	return Result{URL: url, Success: true, Content: content}
}

func (s *Scraper) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", statusError{code: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	return ExtractText(body)
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.code)
}

func failureMessage(parent context.Context, err error) string {
	if parent.Err() == nil && isTimeout(err) {
		return timeoutMessage
	}
	if errors.Is(err, context.Canceled) {
		return "Request canceled"
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
