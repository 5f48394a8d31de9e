package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"liftplan/internal/api"
	"liftplan/internal/storage"
	"liftplan/internal/testsupport"
)

func TestPreferencesSetShowsDiffAndSaves(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preferences", "set", "training_days=4", "goal=strength"}, env.configPath)
	if err != nil {
		t.Fatalf("preferences set: %v", err)
	}
	requireContains(t, out, "--- preferences (saved)")
	requireContains(t, out, "+++ preferences (updated)")
	requireContains(t, out, `+  "goal": "strength",`)
	requireContains(t, out, "Preferences saved")

	out, _, err = runCLI(t, []string{"preferences", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("preferences show: %v", err)
	}
	requireContains(t, out, "Goal: strength")
	requireContains(t, out, "Training Days: 4")

	out, _, err = runCLI(t, []string{"preferences", "set", "goal=strength"}, env.configPath)
	if err != nil {
		t.Fatalf("preferences set (no-op): %v", err)
	}
	requireContains(t, out, "Preferences unchanged")
}

func TestPreferencesSetMergeRemoveAndReplace(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	if _, err := store.SavePreferences(context.Background(), storage.Preferences{"goal": "strength", "equipment": "barbell"}); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	if _, _, err := runCLI(t, []string{"prefs", "set", "equipment=", "days=3"}, env.configPath); err != nil {
		t.Fatalf("preferences set: %v", err)
	}
	prefs, err := store.Preferences(context.Background())
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if len(prefs) != 2 || prefs["goal"] != "strength" || prefs["days"] != "3" {
		t.Fatalf("unexpected merged preferences: %v", prefs)
	}

	if _, _, err := runCLI(t, []string{"prefs", "set", "--replace", "level=beginner"}, env.configPath); err != nil {
		t.Fatalf("preferences set --replace: %v", err)
	}
	out, _, err := runCLI(t, []string{"preferences", "show", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("preferences show --json: %v", err)
	}
	var resp api.PreferencesResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(resp.Preferences) != 1 || resp.Preferences["level"] != "beginner" {
		t.Fatalf("unexpected replaced preferences: %v", resp.Preferences)
	}
}

func TestPreferencesShowEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preferences", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("preferences show: %v", err)
	}
	requireContains(t, out, "No preferences saved")

	out, _, err = runCLI(t, []string{"preferences", "show", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("preferences show --json: %v", err)
	}
	requireContains(t, out, `"preferences": {}`)
}

func TestPreferencesSetRejectsMalformedPairs(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"preferences", "set", "novalue"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "expected key=value") {
		t.Fatalf("expected key=value error, got %v", err)
	}
}

func TestPreferenceLinesSortedAndTitled(t *testing.T) {
	lines := preferenceLines(storage.Preferences{"rest-days": "2", "goal": "hypertrophy"})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	if lines[0] != "  Goal: hypertrophy" || lines[1] != "  Rest Days: 2" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}
