package storage

import (
	"context"
	"errors"
	"os"
	"strings"

	"liftplan/internal/logging"
	"liftplan/internal/services"
)

// History returns the saved summaries, newest first.
func (s *Store) History(ctx context.Context) ([]WorkoutSummary, error) {
	history, err := s.loadHistory()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "storage", "read history", "", err)
	}
	return history, nil
}

// SaveWorkoutSummary prepends entry to history and trims it to the configured
// limit. A zero timestamp is replaced by the current time in milliseconds,
// bumped past the newest entry when needed to keep timestamps unique.
func (s *Store) SaveWorkoutSummary(ctx context.Context, entry WorkoutSummary) ([]WorkoutSummary, error) {
	if strings.TrimSpace(entry.Summary) == "" {
		return nil, services.Invalid("Summary must include plan and summary strings.")
	}
	if entry.Timestamp < 0 {
		return nil, services.Invalid("Invalid timestamp")
	}
	if entry.Rating != 0 && !entry.Rating.Valid() {
		return nil, services.Invalid("Invalid feedback payload")
	}

	var result []WorkoutSummary
	err := s.mutate(ctx, "save summary", func() error {
		history, err := s.loadHistory()
		if err != nil {
			return services.Wrap(services.ErrStorage, "storage", "save summary", "read history", err)
		}
		if entry.Timestamp == 0 {
			entry.Timestamp = s.nextTimestamp(history)
		} else {
			for _, existing := range history {
				if existing.Timestamp == entry.Timestamp {
					return services.Invalid("A summary with this timestamp already exists.")
				}
			}
		}

		history = append([]WorkoutSummary{entry}, history...)
		if len(history) > s.historyLimit {
			history = history[:s.historyLimit]
		}
		if err := writeJSON(s.HistoryPath(), history); err != nil {
			return services.Wrap(services.ErrStorage, "storage", "save summary", "write history", err)
		}
		s.logger.Info("workout summary saved",
			logging.Int64(logging.FieldTimestamp, entry.Timestamp),
			logging.Int("history_size", len(history)),
		)
		result = history
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteWorkoutSummary removes every entry with timestamp ts. Removing an
// unknown timestamp is not an error.
func (s *Store) DeleteWorkoutSummary(ctx context.Context, ts int64) ([]WorkoutSummary, error) {
	var result []WorkoutSummary
	err := s.mutate(ctx, "delete summary", func() error {
		history, err := s.loadHistory()
		if err != nil {
			return services.Wrap(services.ErrStorage, "storage", "delete summary", "read history", err)
		}
		kept := history[:0]
		for _, entry := range history {
			if entry.Timestamp != ts {
				kept = append(kept, entry)
			}
		}
		if removed := len(history) - len(kept); removed > 0 {
			if err := writeJSON(s.HistoryPath(), kept); err != nil {
				return services.Wrap(services.ErrStorage, "storage", "delete summary", "write history", err)
			}
			s.logger.Info("workout summary deleted",
				logging.Int64(logging.FieldTimestamp, ts),
				logging.Int("removed", removed),
			)
		}
		result = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddFeedback sets rating on the entry with timestamp ts. Unknown timestamps
// leave history untouched.
func (s *Store) AddFeedback(ctx context.Context, ts int64, rating Rating) ([]WorkoutSummary, error) {
	if ts <= 0 || !rating.Valid() {
		return nil, services.Invalid("Invalid feedback payload")
	}
	var result []WorkoutSummary
	err := s.mutate(ctx, "add feedback", func() error {
		history, err := s.loadHistory()
		if err != nil {
			return services.Wrap(services.ErrStorage, "storage", "add feedback", "read history", err)
		}
		changed := false
		for i := range history {
			if history[i].Timestamp == ts {
				history[i].Rating = rating
				changed = true
			}
		}
		if changed {
			if err := writeJSON(s.HistoryPath(), history); err != nil {
				return services.Wrap(services.ErrStorage, "storage", "add feedback", "write history", err)
			}
			s.logger.Info("feedback recorded",
				logging.Int64(logging.FieldTimestamp, ts),
				logging.String("rating", rating.String()),
			)
		}
		result = history
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) loadHistory() ([]WorkoutSummary, error) {
	var history []WorkoutSummary
	if err := readJSON(s.HistoryPath(), &history); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []WorkoutSummary{}, nil
		}
		return nil, err
	}
	if history == nil {
		history = []WorkoutSummary{}
	}
	return history, nil
}

func (s *Store) nextTimestamp(history []WorkoutSummary) int64 {
	ts := s.now().UnixMilli()
	for _, entry := range history {
		if entry.Timestamp >= ts {
			ts = entry.Timestamp + 1
		}
	}
	return ts
}
