package server

import (
	"errors"
	"io"
	"net/http"

	"liftplan/internal/api"
	"liftplan/internal/logging"
	"liftplan/internal/services"
)

const internalErrorMessage = "Internal server error"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.History(r.Context())
	if err != nil {
		s.failure(w, r, "history", err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewHistoryResponse(history))
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	ts, err := api.ParseTimestamp(r.PathValue("ts"))
	if err != nil {
		s.failure(w, r, "delete history", err)
		return
	}
	history, err := s.store.DeleteWorkoutSummary(r.Context(), ts)
	if err != nil {
		s.failure(w, r, "delete history", err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewHistoryResponse(history))
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.store.Preferences(r.Context())
	if err != nil {
		s.failure(w, r, "preferences", err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewPreferencesResponse(prefs))
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	prefs, err := api.ParsePreferencesRequest(body)
	if err != nil {
		s.failure(w, r, "save preferences", err)
		return
	}
	saved, err := s.store.SavePreferences(r.Context(), prefs)
	if err != nil {
		s.failure(w, r, "save preferences", err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewPreferencesResponse(saved))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req, err := api.ParseAnalyzeRequest(body)
	if err != nil {
		s.failure(w, r, "analyze", err)
		return
	}
	resp, err := s.analyze.Analyze(r.Context(), req)
	if err != nil {
		s.failure(w, r, "analyze", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req, err := api.ParseSaveRequest(body)
	if err != nil {
		s.failure(w, r, "save", err)
		return
	}
	history, err := s.store.SaveWorkoutSummary(r.Context(), req.ToWorkoutSummary())
	if err != nil {
		s.failure(w, r, "save", err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewHistoryResponse(history))
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req, err := api.ParseFeedbackRequest(body)
	if err != nil {
		s.failure(w, r, "feedback", err)
		return
	}
	history, err := s.store.AddFeedback(r.Context(), req.Timestamp, req.Rating)
	if err != nil {
		s.failure(w, r, "feedback", err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NewHistoryResponse(history))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "Not found")
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, api.MsgInvalidRequestBody)
		return nil, false
	}
	return body, true
}

// failure maps validation errors to 400 with their message and everything else
// to a generic 500.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if errors.Is(err, services.ErrValidation) {
		message, ok := services.PublicMessage(err)
		if !ok {
			message = "Bad request"
		}
		s.writeError(w, http.StatusBadRequest, message)
		return
	}
	logging.WithContext(r.Context(), s.logger).Error("request failed",
		logging.String("operation", operation),
		logging.Error(err),
	)
	s.writeError(w, http.StatusInternalServerError, internalErrorMessage)
}
