package testsupport

import (
	"context"
	"testing"

	"liftplan/internal/config"
	"liftplan/internal/storage"
)

// MustOpenStore opens a storage.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *storage.Store {
	t.Helper()

	store, err := storage.Open(cfg.Storage.DataDir, storage.WithHistoryLimit(cfg.Storage.HistoryLimit))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SaveSummary stores a history entry for tests using the provided store.
func SaveSummary(t testing.TB, store *storage.Store, ts int64, summary string) []storage.WorkoutSummary {
	t.Helper()

	history, err := store.SaveWorkoutSummary(context.Background(), storage.WorkoutSummary{
		Plan:      "plan for " + summary,
		Summary:   summary,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("store.SaveWorkoutSummary: %v", err)
	}
	return history
}
