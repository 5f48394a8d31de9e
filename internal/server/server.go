package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"liftplan/internal/api"
	"liftplan/internal/config"
	"liftplan/internal/logging"
	"liftplan/internal/storage"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Store is the persistence surface the handlers need.
type Store interface {
	History(ctx context.Context) ([]storage.WorkoutSummary, error)
	SaveWorkoutSummary(ctx context.Context, entry storage.WorkoutSummary) ([]storage.WorkoutSummary, error)
	DeleteWorkoutSummary(ctx context.Context, ts int64) ([]storage.WorkoutSummary, error)
	AddFeedback(ctx context.Context, ts int64, rating storage.Rating) ([]storage.WorkoutSummary, error)
	Preferences(ctx context.Context) (storage.Preferences, error)
	SavePreferences(ctx context.Context, prefs storage.Preferences) (storage.Preferences, error)
}

// Server hosts the HTTP API.
type Server struct {
	bind       string
	corsOrigin string
	publicDir  string
	logger     *slog.Logger

	store   Store
	analyze *api.AnalyzeService

	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// New wires the routes and middleware. The server does not listen until Start.
func New(cfg *config.Config, store Store, scraper api.Scraper, planner api.Planner, logger *slog.Logger) *Server {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	s := &Server{
		bind:       strings.TrimSpace(cfg.Server.Bind),
		corsOrigin: strings.TrimSpace(cfg.Server.CORSOrigin),
		publicDir:  strings.TrimSpace(cfg.Server.PublicDir),
		logger:     logging.NewComponentLogger(logger, "http"),
		store:      store,
		analyze:    api.NewAnalyzeService(scraper, planner),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("DELETE /api/history/{ts}", s.handleDeleteHistory)
	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("POST /api/preferences", s.handleSavePreferences)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/save", s.handleSave)
	mux.HandleFunc("POST /api/feedback", s.handleFeedback)
	mux.HandleFunc("/api/", s.handleNotFound)
	if s.publicDir != "" {
		mux.Handle("/", staticHandler(s.publicDir))
	}

	s.handler = chain(mux,
		s.requestID,
		s.accessLog,
		s.recoverPanics,
		s.cors,
		limitBody(maxBodyBytes),
	)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the bound listener address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listener and serves in the background until ctx is done or
// Close is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.listener = listener
	s.server = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	s.logger.Info("liftplan server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("public_dir", s.publicDir),
	)
	return nil
}

// Close gracefully shuts the server down.
func (s *Server) Close() {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http shutdown incomplete", logging.Error(err))
	}
}

// staticHandler serves the browser client for GET and HEAD requests.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
