package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains HTTP listener and static asset configuration.
type Server struct {
	Bind       string `toml:"bind"`
	PublicDir  string `toml:"public_dir"`
	CORSOrigin string `toml:"cors_origin"`
}

// Storage contains the location and limits of the JSON data files.
type Storage struct {
	DataDir      string `toml:"data_dir"`
	HistoryLimit int    `toml:"history_limit"`
}

// LLM contains the chat completion provider settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	OrgID          string `toml:"org_id"`
	ProjectID      string `toml:"project_id"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scraper contains settings for fetching workout pages.
type Scraper struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        int    `toml:"retries"`
	UserAgent      string `toml:"user_agent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for liftplan.
//
// Configuration sections by subsystem:
//   - Server: listen address, static assets, CORS origin
//   - Storage: data directory and history cap
//   - LLM: chat completion credentials and model
//   - Scraper: per-fetch timeout, retry count, user agent
//   - Logging: log format, level, and optional file output
type Config struct {
	Server  Server  `toml:"server"`
	Storage Storage `toml:"storage"`
	LLM     LLM     `toml:"llm"`
	Scraper Scraper `toml:"scraper"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/liftplan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("liftplan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory. The public directory is not
// created; a missing one only disables static asset serving.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Storage.DataDir, err)
	}
	return nil
}

// HasLLMCredentials reports whether an API key is configured.
func (c *Config) HasLLMCredentials() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
