package api

import (
	"liftplan/internal/scraper"
	"liftplan/internal/storage"
)

// AnalyzeRequest asks for a plan built from up to five workout URLs.
type AnalyzeRequest struct {
	URLs        []string          `json:"urls"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// AnalyzeResponse carries the generated plan and every scrape outcome.
type AnalyzeResponse struct {
	Plan          string           `json:"plan"`
	Summary       string           `json:"summary"`
	ProcessedURLs []scraper.Result `json:"processedUrls"`
}

// SaveRequest stores a plan summary in history. A zero Timestamp lets the
// store assign one.
type SaveRequest struct {
	Plan      string `json:"plan"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// FeedbackRequest rates a saved summary.
type FeedbackRequest struct {
	Timestamp int64          `json:"timestamp"`
	Rating    storage.Rating `json:"rating"`
}

// HistoryResponse wraps the saved summaries, newest first.
type HistoryResponse struct {
	History []storage.WorkoutSummary `json:"history"`
}

// PreferencesResponse wraps the preferences document.
type PreferencesResponse struct {
	Preferences storage.Preferences `json:"preferences"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToWorkoutSummary converts a save request into a history entry.
func (r SaveRequest) ToWorkoutSummary() storage.WorkoutSummary {
	return storage.WorkoutSummary{
		Plan:      r.Plan,
		Summary:   r.Summary,
		Timestamp: r.Timestamp,
	}
}

// NewHistoryResponse guarantees a JSON array even for an empty history.
func NewHistoryResponse(history []storage.WorkoutSummary) HistoryResponse {
	if history == nil {
		history = []storage.WorkoutSummary{}
	}
	return HistoryResponse{History: history}
}

// NewPreferencesResponse guarantees a JSON object even for nil preferences.
func NewPreferencesResponse(prefs storage.Preferences) PreferencesResponse {
	if prefs == nil {
		prefs = storage.Preferences{}
	}
	return PreferencesResponse{Preferences: prefs}
}
