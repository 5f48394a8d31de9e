package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"liftplan/internal/api"
	"liftplan/internal/testsupport"
)

const legDayHTML = `<html><body><nav>menu</nav><h1>Leg Day</h1><p>Back squat 5x5</p></body></html>`

func TestAnalyzePrintsPlanAndSaves(t *testing.T) {
	llm := newLLMStub(t, "Day 1: squats", "Lower body strength")
	page := newPageServer(t, legDayHTML)
	env := setupCLITestEnv(t, testsupport.WithLLMEndpoint(llm.URL))

	out, _, err := runCLI(t, []string{"analyze", page.URL, "--pref", "goal=strength", "--save"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "== Plan ==")
	requireContains(t, out, "Day 1: squats")
	requireContains(t, out, "Lower body strength")
	requireContains(t, out, "[OK] "+page.URL)
	requireContains(t, out, "Saved to history as ")

	store := testsupport.MustOpenStore(t, env.cfg)
	history, err := store.History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Plan != "Day 1: squats" || history[0].Summary != "Lower body strength" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestAnalyzeJSONReportsFailedSources(t *testing.T) {
	llm := newLLMStub(t, "Plan text", "Summary text")
	page := newPageServer(t, legDayHTML)
	env := setupCLITestEnv(t, testsupport.WithLLMEndpoint(llm.URL))

	out, _, err := runCLI(t, []string{"analyze", "--json", page.URL, "http://127.0.0.1:1/unreachable"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze --json: %v", err)
	}
	var resp api.AnalyzeResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if resp.Plan != "Plan text" || resp.Summary != "Summary text" {
		t.Fatalf("unexpected plan: %+v", resp)
	}
	if len(resp.ProcessedURLs) != 2 || !resp.ProcessedURLs[0].Success || resp.ProcessedURLs[1].Success {
		t.Fatalf("unexpected processed urls: %+v", resp.ProcessedURLs)
	}
	if strings.Contains(out, `"saved"`) {
		t.Fatalf("did not expect saved entry without --save: %s", out)
	}
}

func TestAnalyzeValidatesArguments(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"analyze"}, env.configPath)
	if err == nil || err.Error() != api.MsgURLCount {
		t.Fatalf("expected url count error, got %v", err)
	}

	six := []string{"analyze"}
	for range 6 {
		six = append(six, "https://example.com/w")
	}
	if _, _, err := runCLI(t, six, env.configPath); err == nil || err.Error() != api.MsgURLCount {
		t.Fatalf("expected url count error for six urls, got %v", err)
	}

	_, _, err = runCLI(t, []string{"analyze", "ftp://example.com/w"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), api.MsgInvalidURL) {
		t.Fatalf("expected invalid url error, got %v", err)
	}
}

func TestAnalyzeWithoutAPIKeyFails(t *testing.T) {
	page := newPageServer(t, legDayHTML)
	env := setupCLITestEnv(t, testsupport.WithoutAPIKey())

	_, _, err := runCLI(t, []string{"analyze", page.URL}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}
