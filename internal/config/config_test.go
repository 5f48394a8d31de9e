package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"liftplan/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_ORG_ID", "OPENAI_PROJECT_ID", "OPENAI_MODEL", "PORT", "LIFTPLAN_DATA_DIR", "LIFTPLAN_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "liftplan", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Storage.DataDir) || filepath.Base(cfg.Storage.DataDir) != "data" {
		t.Fatalf("unexpected data dir: %q", cfg.Storage.DataDir)
	}
	if !filepath.IsAbs(cfg.Server.PublicDir) {
		t.Fatalf("expected absolute public dir, got %q", cfg.Server.PublicDir)
	}
	if cfg.Server.Bind != ":3000" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.Storage.HistoryLimit != 50 {
		t.Fatalf("unexpected history limit: %d", cfg.Storage.HistoryLimit)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.MaxTokens != 5000 {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.HasLLMCredentials() {
		t.Fatal("expected no LLM credentials without OPENAI_API_KEY")
	}
	if cfg.Scraper.TimeoutSeconds != 10 || cfg.Scraper.Retries != 1 {
		t.Fatalf("unexpected scraper defaults: %+v", cfg.Scraper)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Storage.DataDir); err != nil || !info.IsDir() {
		t.Fatalf("expected data dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "liftplan.toml")

	type payload struct {
		Server struct {
			Bind string `toml:"bind"`
		} `toml:"server"`
		Storage struct {
			DataDir      string `toml:"data_dir"`
			HistoryLimit int    `toml:"history_limit"`
		} `toml:"storage"`
		LLM struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"llm"`
	}
	custom := payload{}
	custom.Server.Bind = "127.0.0.1:8080"
	custom.Storage.DataDir = filepath.Join(tempDir, "store")
	custom.Storage.HistoryLimit = 10
	custom.LLM.APIKey = "file-key"
	custom.LLM.Model = "gpt-test"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Server.Bind != "127.0.0.1:8080" {
		t.Fatalf("unexpected bind %q", cfg.Server.Bind)
	}
	if cfg.Storage.DataDir != filepath.Join(tempDir, "store") {
		t.Fatalf("unexpected data dir %q", cfg.Storage.DataDir)
	}
	if cfg.Storage.HistoryLimit != 10 {
		t.Fatalf("expected history limit 10, got %d", cfg.Storage.HistoryLimit)
	}
	if cfg.LLM.APIKey != "file-key" || cfg.LLM.Model != "gpt-test" {
		t.Fatalf("unexpected llm settings %+v", cfg.LLM)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "liftplan.toml")
	contents := `
[server]
bind = "127.0.0.1:8080"

[llm]
api_key = "file-key"
model = "file-model"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_ORG_ID", "org-1")
	t.Setenv("OPENAI_PROJECT_ID", "proj-1")
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("PORT", "4100")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected API key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.OrgID != "org-1" || cfg.LLM.ProjectID != "proj-1" {
		t.Errorf("expected org/project from env, got %q/%q", cfg.LLM.OrgID, cfg.LLM.ProjectID)
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("expected model from env, got %q", cfg.LLM.Model)
	}
	if cfg.Server.Bind != "127.0.0.1:4100" {
		t.Errorf("expected PORT to replace the configured port, got %q", cfg.Server.Bind)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_openai_api_key_here") {
		t.Fatalf("sample config missing placeholder API key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Storage.HistoryLimit != 50 {
		t.Fatalf("expected sample history limit 50, got %d", cfg.Storage.HistoryLimit)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg = config.Default()
	cfg.Storage.HistoryLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative history limit")
	}

	cfg = config.Default()
	cfg.LLM.MaxTokens = 1000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when max_tokens leaves no room for materials")
	}

	cfg = config.Default()
	cfg.LLM.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http base url")
	}

	cfg = config.Default()
	cfg.Server.CORSOrigin = "localhost"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative CORS origin")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
