package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"liftplan/internal/config"
	"liftplan/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_ORG_ID", "OPENAI_PROJECT_ID", "OPENAI_MODEL", "PORT", "LIFTPLAN_DATA_DIR", "LIFTPLAN_LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(homeDir, ".config", "liftplan", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[server]
bind = %q
public_dir = %q

[storage]
data_dir = %q
history_limit = %d

[llm]
api_key = %q
base_url = %q
model = %q
timeout_seconds = 5

[scraper]
timeout_seconds = 5
retries = 0
`,
		cfg.Server.Bind,
		cfg.Server.PublicDir,
		cfg.Storage.DataDir,
		cfg.Storage.HistoryLimit,
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.Model,
	)
	testsupport.WriteFile(t, path, content)
}

// newLLMStub answers chat completion requests: health probes get {"ok":true},
// everything else gets the given plan and summary.
func newLLMStub(t *testing.T, plan, summary string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		content := map[string]any{"plan": plan, "summary": summary}
		if strings.Contains(string(body), `{\"ok\":true}`) {
			content = map[string]any{"ok": true}
		}
		encoded, _ := json.Marshal(content)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": string(encoded)}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
