package storage

import (
	"context"
	"errors"
	"os"

	"liftplan/internal/logging"
	"liftplan/internal/services"
)

// Preferences returns the stored preferences document.
func (s *Store) Preferences(ctx context.Context) (Preferences, error) {
	prefs, err := s.loadPreferences()
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "storage", "read preferences", "", err)
	}
	return prefs, nil
}

// SavePreferences replaces the preferences document wholesale.
func (s *Store) SavePreferences(ctx context.Context, prefs Preferences) (Preferences, error) {
	stored := make(Preferences, len(prefs))
	for key, value := range prefs {
		stored[key] = value
	}
	err := s.mutate(ctx, "save preferences", func() error {
		if err := writeJSON(s.PreferencesPath(), stored); err != nil {
			return services.Wrap(services.ErrStorage, "storage", "save preferences", "write preferences", err)
		}
		s.logger.Info("preferences saved", logging.Int("keys", len(stored)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Store) loadPreferences() (Preferences, error) {
	var prefs Preferences
	if err := readJSON(s.PreferencesPath(), &prefs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Preferences{}, nil
		}
		return nil, err
	}
	if prefs == nil {
		prefs = Preferences{}
	}
	return prefs, nil
}
