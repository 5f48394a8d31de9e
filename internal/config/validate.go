package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable. A missing LLM API key is not
// an error; callers warn about it and requests fail at call time.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateScraper(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	_, port, err := net.SplitHostPort(c.Server.Bind)
	if err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("server.bind %q: port must be between 0 and 65535 (check PORT)", c.Server.Bind)
	}
	if origin := c.Server.CORSOrigin; origin != "" && origin != "*" {
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("server.cors_origin %q must be an absolute origin or *", origin)
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.data_dir must be set")
	}
	if c.Storage.HistoryLimit <= 0 || c.Storage.HistoryLimit > maxHistoryLimit {
		return fmt.Errorf("storage.history_limit must be between 1 and %d", maxHistoryLimit)
	}
	return nil
}

func (c *Config) validateLLM() error {
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("llm.base_url %q must be an http(s) URL", c.LLM.BaseURL)
	}
	if c.LLM.MaxTokens < minLLMMaxTokens {
		return fmt.Errorf("llm.max_tokens must be at least %d", minLLMMaxTokens)
	}
	return nil
}

func (c *Config) validateScraper() error {
	if c.Scraper.Retries > maxScraperRetries {
		return fmt.Errorf("scraper.retries must be at most %d", maxScraperRetries)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
