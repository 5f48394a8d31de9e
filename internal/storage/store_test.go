package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"liftplan/internal/services"
	"liftplan/internal/storage"
)

func openStore(t *testing.T, opts ...storage.Option) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "data"), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenCreatesDocuments(t *testing.T) {
	store := openStore(t)

	history, err := os.ReadFile(store.HistoryPath())
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if string(history) != "[]" {
		t.Fatalf("expected empty history document, got %q", history)
	}
	prefs, err := os.ReadFile(store.PreferencesPath())
	if err != nil {
		t.Fatalf("read preferences: %v", err)
	}
	if string(prefs) != "{}" {
		t.Fatalf("expected empty preferences document, got %q", prefs)
	}
}

func TestOpenRequiresDirectory(t *testing.T) {
	if _, err := storage.Open("  "); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSaveWorkoutSummaryPrependsAndCaps(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 1; i <= 51; i++ {
		if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{
			Summary:   fmt.Sprintf("summary %d", i),
			Timestamp: int64(i),
		}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	history, err := store.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(history))
	}
	if history[0].Timestamp != 51 {
		t.Fatalf("expected newest entry first, got %d", history[0].Timestamp)
	}
	if last := history[len(history)-1].Timestamp; last != 2 {
		t.Fatalf("expected oldest entry dropped, last timestamp %d", last)
	}
}

func TestSaveWorkoutSummaryHistoryLimitOption(t *testing.T) {
	store := openStore(t, storage.WithHistoryLimit(2))
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "s", Timestamp: int64(i)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	history, _ := store.History(ctx)
	if len(history) != 2 || history[0].Timestamp != 3 || history[1].Timestamp != 2 {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestSaveWorkoutSummaryValidation(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	cases := []storage.WorkoutSummary{
		{Summary: "   "},
		{Summary: "ok", Timestamp: -5},
		{Summary: "ok", Timestamp: 1, Rating: 3},
	}
	for _, entry := range cases {
		if _, err := store.SaveWorkoutSummary(ctx, entry); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", entry, err)
		}
	}

	if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "first", Timestamp: 10}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "dup", Timestamp: 10}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected duplicate timestamp to be rejected, got %v", err)
	}
}

func TestSaveWorkoutSummaryAssignsUniqueTimestamps(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	store := openStore(t, storage.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "auto"}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	history, _ := store.History(ctx)
	want := []int64{1_700_000_000_002, 1_700_000_000_001, 1_700_000_000_000}
	for i, entry := range history {
		if entry.Timestamp != want[i] {
			t.Fatalf("entry %d: expected timestamp %d, got %d", i, want[i], entry.Timestamp)
		}
	}
}

func TestDeleteWorkoutSummaryIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, ts := range []int64{1, 2, 3} {
		if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "s", Timestamp: ts}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	history, err := store.DeleteWorkoutSummary(ctx, 2)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(history) != 2 || history[0].Timestamp != 3 || history[1].Timestamp != 1 {
		t.Fatalf("unexpected history after delete: %+v", history)
	}

	again, err := store.DeleteWorkoutSummary(ctx, 2)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("expected delete of missing timestamp to be a no-op, got %+v", again)
	}
}

func TestAddFeedback(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, ts := range []int64{100, 200} {
		if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "s", Timestamp: ts}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	history, err := store.AddFeedback(ctx, 100, storage.RatingDown)
	if err != nil {
		t.Fatalf("AddFeedback: %v", err)
	}
	if history[1].Rating != storage.RatingDown || history[0].Rating != 0 {
		t.Fatalf("expected only ts=100 rated, got %+v", history)
	}

	history, err = store.AddFeedback(ctx, 100, storage.RatingUp)
	if err != nil {
		t.Fatalf("AddFeedback replace: %v", err)
	}
	if history[1].Rating != storage.RatingUp {
		t.Fatalf("expected rating replaced, got %+v", history[1])
	}

	unchanged, err := store.AddFeedback(ctx, 999, storage.RatingUp)
	if err != nil {
		t.Fatalf("AddFeedback unknown ts: %v", err)
	}
	if len(unchanged) != 2 || unchanged[0].Rating != 0 {
		t.Fatalf("expected history untouched, got %+v", unchanged)
	}

	for _, rating := range []storage.Rating{0, 2, -2} {
		if _, err := store.AddFeedback(ctx, 100, rating); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("rating %d: expected validation error, got %v", rating, err)
		}
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	prefs := storage.Preferences{"goal": "strength", "daysPerWeek": "4"}
	if _, err := store.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	got, err := store.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if len(got) != 2 || got["goal"] != "strength" || got["daysPerWeek"] != "4" {
		t.Fatalf("unexpected preferences %v", got)
	}

	if _, err := store.SavePreferences(ctx, storage.Preferences{"equipment": "dumbbells"}); err != nil {
		t.Fatalf("SavePreferences replace: %v", err)
	}
	got, _ = store.Preferences(ctx)
	if len(got) != 1 || got["equipment"] != "dumbbells" {
		t.Fatalf("expected wholesale replace, got %v", got)
	}

	if _, err := store.SavePreferences(ctx, nil); err != nil {
		t.Fatalf("SavePreferences nil: %v", err)
	}
	raw, _ := os.ReadFile(store.PreferencesPath())
	if string(raw) != "{}" {
		t.Fatalf("expected nil preferences stored as {}, got %q", raw)
	}
}

func TestConcurrentSavesAreSerialized(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: fmt.Sprintf("s%d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent save: %v", err)
		}
	}

	raw, err := os.ReadFile(store.HistoryPath())
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	var history []storage.WorkoutSummary
	if err := json.Unmarshal(raw, &history); err != nil {
		t.Fatalf("history is not valid JSON: %v", err)
	}
	if len(history) != n {
		t.Fatalf("expected %d entries, got %d", n, len(history))
	}
	seen := map[int64]bool{}
	for _, entry := range history {
		if seen[entry.Timestamp] {
			t.Fatalf("duplicate timestamp %d", entry.Timestamp)
		}
		seen[entry.Timestamp] = true
	}
}

func TestCorruptHistoryReportsStorageError(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := os.WriteFile(store.HistoryPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt history: %v", err)
	}
	if _, err := store.History(ctx); !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if _, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "s", Timestamp: 1}); !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected save to fail with storage error, got %v", err)
	}

	// The queue keeps serving once the document is repaired.
	if err := os.WriteFile(store.HistoryPath(), []byte("[]"), 0o644); err != nil {
		t.Fatalf("repair history: %v", err)
	}
	history, err := store.SaveWorkoutSummary(ctx, storage.WorkoutSummary{Summary: "s", Timestamp: 1})
	if err != nil {
		t.Fatalf("save after repair: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one entry, got %d", len(history))
	}
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := store.SaveWorkoutSummary(context.Background(), storage.WorkoutSummary{Summary: "s"}); !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage error after close, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestParseRating(t *testing.T) {
	cases := map[string]storage.Rating{"up": storage.RatingUp, "DOWN": storage.RatingDown, "1": storage.RatingUp, "-1": storage.RatingDown}
	for label, want := range cases {
		got, ok := storage.ParseRating(label)
		if !ok || got != want {
			t.Fatalf("ParseRating(%q) = %v, %v", label, got, ok)
		}
	}
	if _, ok := storage.ParseRating("meh"); ok {
		t.Fatal("expected unknown label to be rejected")
	}
}
