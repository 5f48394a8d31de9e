package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"liftplan/internal/config"
	"liftplan/internal/logging"
	"liftplan/internal/scraper"
	"liftplan/internal/server"
	"liftplan/internal/services/llm"
	"liftplan/internal/storage"
)

// Options configures server process runtime behavior.
type Options struct {
	// LogLevel overrides the configured logging level when set.
	LogLevel string
}

// Components bundles the long-lived dependencies built from config.
type Components struct {
	Store   *storage.Store
	Scraper *scraper.Scraper
	Planner *llm.Client
}

// Build opens the store and constructs the scraper and LLM client.
func Build(cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	store, err := storage.Open(cfg.Storage.DataDir,
		storage.WithLogger(logger),
		storage.WithHistoryLimit(cfg.Storage.HistoryLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &Components{
		Store:   store,
		Scraper: NewScraper(cfg, logger),
		Planner: NewPlanner(cfg, logger),
	}, nil
}

// Close releases resources held by the components.
func (c *Components) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// NewScraper builds a scraper from the [scraper] config section.
func NewScraper(cfg *config.Config, logger *slog.Logger) *scraper.Scraper {
	return scraper.New(scraper.Config{
		Timeout:   time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
		Retries:   cfg.Scraper.Retries,
		UserAgent: cfg.Scraper.UserAgent,
	}, scraper.WithLogger(logger))
}

// NewPlanner builds an LLM client from the [llm] config section.
func NewPlanner(cfg *config.Config, logger *slog.Logger) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		OrgID:          cfg.LLM.OrgID,
		ProjectID:      cfg.LLM.ProjectID,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		MaxTokens:      cfg.LLM.MaxTokens,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}, llm.WithLogger(logger))
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or cmdCtx ends.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logCfg := *cfg
	if opts.LogLevel != "" {
		logCfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(&logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if !cfg.HasLLMCredentials() {
		logger.Warn("llm api key not configured; plan generation requests will fail",
			logging.String("hint", "set OPENAI_API_KEY or llm.api_key"),
		)
	}

	components, err := Build(cfg, logger)
	if err != nil {
		logger.Error("startup failed", logging.Error(err))
		return err
	}
	defer components.Close()

	srv := server.New(cfg, components.Store, components.Scraper, components.Planner, logger)
	if err := srv.Start(signalCtx); err != nil {
		return err
	}
	logger.Info("liftplan ready",
		logging.String("address", srv.Addr()),
		logging.String("data_dir", components.Store.Dir()),
		logging.String("model", components.Planner.Model()),
	)

	<-signalCtx.Done()
	logger.Info("liftplan shutting down")
	srv.Close()
	return nil
}
