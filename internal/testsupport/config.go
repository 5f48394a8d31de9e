package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"liftplan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.PublicDir = filepath.Join(base, "public")
	cfgVal.Storage.DataDir = filepath.Join(base, "data")
	cfgVal.LLM.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLLMEndpoint points the LLM client at a test server.
func WithLLMEndpoint(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = baseURL
	}
}

// WithoutAPIKey clears the LLM API key.
func WithoutAPIKey() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = ""
	}
}

// WithHistoryLimit overrides the retained history length.
func WithHistoryLimit(limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.HistoryLimit = limit
	}
}

// WithPublicFiles writes the given files into the public directory.
func WithPublicFiles(files map[string]string) ConfigOption {
	return func(b *configBuilder) {
		dir := b.cfg.Server.PublicDir
		for name, content := range files {
			WriteFile(b.t, filepath.Join(dir, name), content)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Storage.DataDir)
}

// WriteFile creates path and its parent directories with the given content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
