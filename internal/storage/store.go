package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"liftplan/internal/fileutil"
	"liftplan/internal/logging"
	"liftplan/internal/services"
)

const (
	// HistoryFile is the workout history document name inside the data directory.
	HistoryFile = "workouts.json"
	// PreferencesFile is the preferences document name inside the data directory.
	PreferencesFile = "preferences.json"
	// LockFile guards read-modify-write cycles across processes.
	LockFile = ".liftplan.lock"

	// DefaultHistoryLimit caps the number of retained summaries.
	DefaultHistoryLimit = 50

	fileMode = 0o644
)

// Store manages the history and preferences documents.
type Store struct {
	dir          string
	historyLimit int
	logger       *slog.Logger
	now          func() time.Time

	lock  *flock.Flock
	queue *writeQueue
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger attaches a logger used for write-queue diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistoryLimit overrides the retained history length. Non-positive values
// keep the default.
func WithHistoryLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithClock overrides the time source used to assign timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open prepares the data directory and starts the write queue.
func Open(dir string, opts ...Option) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "open", "data directory not set", nil)
	}
	s := &Store{
		dir:          dir,
		historyLimit: DefaultHistoryLimit,
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "storage")

	if err := s.EnsureFiles(); err != nil {
		return nil, err
	}
	s.lock = flock.New(filepath.Join(dir, LockFile))
	s.queue = newWriteQueue(64)
	return s, nil
}

// EnsureFiles creates the data directory and empty documents when missing.
func (s *Store) EnsureFiles() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return services.Wrap(services.ErrStorage, "storage", "ensure files", "create data directory", err)
	}
	for name, initial := range map[string][]byte{
		HistoryFile:     []byte("[]"),
		PreferencesFile: []byte("{}"),
	} {
		created, err := fileutil.EnsureFile(filepath.Join(s.dir, name), initial, fileMode)
		if err != nil {
			return services.Wrap(services.ErrStorage, "storage", "ensure files", name, err)
		}
		if created {
			s.logger.Debug("created data file", logging.String("path", filepath.Join(s.dir, name)))
		}
	}
	return nil
}

// Close drains pending writes and stops the queue.
func (s *Store) Close() error {
	if s == nil || s.queue == nil {
		return nil
	}
	s.queue.close()
	return nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// HistoryLimit returns the retained history length.
func (s *Store) HistoryLimit() int {
	return s.historyLimit
}

// HistoryPath returns the absolute or relative path of the history document.
func (s *Store) HistoryPath() string {
	return filepath.Join(s.dir, HistoryFile)
}

// PreferencesPath returns the path of the preferences document.
func (s *Store) PreferencesPath() string {
	return filepath.Join(s.dir, PreferencesFile)
}

// mutate runs fn on the write queue while holding the cross-process lock.
func (s *Store) mutate(ctx context.Context, operation string, fn func() error) error {
	if s == nil || s.queue == nil {
		return services.Wrap(services.ErrStorage, "storage", operation, "store not open", nil)
	}
	err := s.queue.submit(ctx, func() error {
		if err := s.lock.Lock(); err != nil {
			return services.Wrap(services.ErrStorage, "storage", operation, "acquire lock", err)
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.logger.Warn("release data lock failed", logging.Error(err))
			}
		}()
		return fn()
	})
	if errors.Is(err, errQueueClosed) {
		return services.Wrap(services.ErrStorage, "storage", operation, "store closed", err)
	}
	if err != nil && !errors.Is(err, services.ErrValidation) {
		s.logger.Warn("write task failed", logging.String("operation", operation), logging.Error(err))
	}
	return err
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return fileutil.WriteFileAtomic(path, data, fileMode)
}
