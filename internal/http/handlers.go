// Package http exposes the summarization pipeline over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"meeting-summary-service/internal/models"
	"meeting-summary-service/internal/service/fixture"
	"meeting-summary-service/internal/service/oracle"
	"meeting-summary-service/internal/service/summarize"
	"meeting-summary-service/internal/service/timeline"
)

// Server holds the handler dependencies.
type Server struct {
	svc      *summarize.Service
	provider string
	logger   zerolog.Logger
}

// NewServer creates the HTTP handler set around the pipeline.
func NewServer(svc *summarize.Service, provider string, logger zerolog.Logger) *Server {
	return &Server{
		svc:      svc,
		provider: provider,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// errorBody is the structured error surface: the failing component plus a
// human-readable description of the violated constraint.
type errorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Component string `json:"component"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Meeting Summarization API",
		"version": "0.1.0",
		"endpoints": map[string]string{
			"health":            "/health",
			"summarize":         "POST /api/meetings/summarize",
			"mock_data":         "GET /api/meetings/mock-data",
			"mock_summary":      "GET /api/meetings/mock-summary",
			"long_mock_summary": "GET /api/meetings/long-mock-summary",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"oracle":         s.provider,
		"window_seconds": s.svc.WindowSeconds(),
	})
}

// handleSummarize is the core operation: MeetingSession in,
// MeetingSummaryResponse out.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var session models.MeetingSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed_session", "request", "could not decode session: "+err.Error())
		return
	}

	resp, err := s.svc.Summarize(r.Context(), &session)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleMockData returns a synthetic session without summarizing it.
func (s *Server) handleMockData(w http.ResponseWriter, r *http.Request) {
	minutes := queryInt(r, "duration_minutes", 10)
	idx := queryInt(r, "conversation_index", 0)

	writeJSON(w, http.StatusOK, fixture.SampleSession(minutes, idx))
}

// handleMockSummary generates a synthetic session and runs the full
// pipeline on it.
func (s *Server) handleMockSummary(w http.ResponseWriter, r *http.Request) {
	minutes := queryInt(r, "duration_minutes", 10)
	idx := queryInt(r, "conversation_index", 0)

	session := fixture.SampleSession(minutes, idx)
	summary, err := s.svc.Summarize(r.Context(), session)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meeting": session,
		"summary": summary,
	})
}

// handleLongMockSummary exercises multiple timeline windows.
func (s *Server) handleLongMockSummary(w http.ResponseWriter, r *http.Request) {
	minutes := queryInt(r, "duration_minutes", 30)

	session := fixture.LongSession(minutes)
	summary, err := s.svc.Summarize(r.Context(), session)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meeting":           session,
		"summary":           summary,
		"timeline_segments": len(summary.TimelineSummaries),
	})
}

// writePipelineError maps pipeline errors onto the HTTP error surface:
// client input problems are 400, provider outages 502, everything else 500.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError

	switch {
	case errors.As(err, &vErr):
		s.writeError(w, http.StatusBadRequest, "invalid_session", "validation", vErr.Error())
	case errors.Is(err, timeline.ErrInvalidWindowWidth):
		s.writeError(w, http.StatusBadRequest, "invalid_configuration", "timeline", err.Error())
	case errors.Is(err, timeline.ErrTooManyWindows):
		s.writeError(w, http.StatusBadRequest, "invalid_session", "timeline", err.Error())
	case errors.Is(err, oracle.ErrUnavailable):
		s.writeError(w, http.StatusBadGateway, "oracle_unavailable", "oracle", err.Error())
	default:
		s.logger.Error().Err(err).Msg("summarization pipeline failed")
		s.writeError(w, http.StatusInternalServerError, "internal_error", "pipeline", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, component, message string) {
	if status >= 500 {
		s.logger.Error().Str("code", code).Str("component", component).Msg(message)
	} else {
		s.logger.Warn().Str("code", code).Str("component", component).Msg(message)
	}
	writeJSON(w, status, errorBody{Error: apiError{
		Code:      code,
		Message:   message,
		Component: component,
	}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
