package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeScraper()
	return c.normalizeLogging()
}

func (c *Config) normalizeServer() error {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if value, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = bindWithPort(c.Server.Bind, strings.TrimSpace(value))
	}
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if strings.TrimSpace(c.Server.PublicDir) == "" {
		c.Server.PublicDir = defaultPublicDir
	}
	var err error
	if c.Server.PublicDir, err = expandPath(c.Server.PublicDir); err != nil {
		return fmt.Errorf("server.public_dir: %w", err)
	}
	c.Server.CORSOrigin = strings.TrimSpace(c.Server.CORSOrigin)
	return nil
}

// bindWithPort keeps the configured host and swaps in port.
func bindWithPort(bind, port string) string {
	host := ""
	if idx := strings.LastIndex(bind, ":"); idx >= 0 {
		host = bind[:idx]
	}
	return host + ":" + port
}

func (c *Config) normalizeStorage() error {
	if value, ok := os.LookupEnv("LIFTPLAN_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Storage.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		c.Storage.DataDir = defaultDataDir
	}
	var err error
	if c.Storage.DataDir, err = expandPath(c.Storage.DataDir); err != nil {
		return fmt.Errorf("storage.data_dir: %w", err)
	}
	if c.Storage.HistoryLimit == 0 {
		c.Storage.HistoryLimit = defaultHistoryLimit
	}
	return nil
}

func (c *Config) normalizeLLM() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"OPENAI_API_KEY", &c.LLM.APIKey},
		{"OPENAI_ORG_ID", &c.LLM.OrgID},
		{"OPENAI_PROJECT_ID", &c.LLM.ProjectID},
		{"OPENAI_MODEL", &c.LLM.Model},
	}
	for _, override := range overrides {
		if value, ok := os.LookupEnv(override.env); ok && strings.TrimSpace(value) != "" {
			*override.target = value
		}
		*override.target = strings.TrimSpace(*override.target)
	}
	if c.LLM.APIKey == placeholderAPIKey {
		c.LLM.APIKey = ""
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeScraper() {
	if c.Scraper.TimeoutSeconds <= 0 {
		c.Scraper.TimeoutSeconds = defaultScraperTimeout
	}
	if c.Scraper.Retries < 0 {
		c.Scraper.Retries = 0
	}
	c.Scraper.UserAgent = strings.TrimSpace(c.Scraper.UserAgent)
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = defaultScraperUserAgent
	}
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("LIFTPLAN_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
