package server

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "github.com/notenlabs/gradebench/internal/errors"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// VersionResponse is the /version payload.
type VersionResponse struct {
	Version  string    `json:"version"`
	Results  int       `json:"results"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"results": "healthy"}
	if len(s.results) == 0 {
		checks["results"] = "unhealthy"
		apperrors.RespondDetails(w, http.StatusServiceUnavailable,
			apperrors.CodeServiceUnavailable, "no results loaded",
			map[string]any{"checks": checks})
		return
	}

	writeJSON(w, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Checks:  checks,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, VersionResponse{
		Version:  s.version,
		Results:  len(s.results),
		LoadedAt: s.loaded,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.report)
}

func (s *Server) handleModelStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.report.ModelStats)
}

func (s *Server) handlePromptStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.report.PromptStats)
}

func (s *Server) handleWinners(w http.ResponseWriter, r *http.Request) {
	if !s.report.HasWinners {
		apperrors.Respond(w, http.StatusNotFound, apperrors.CodeNotFound,
			"no model has a successful grade")
		return
	}
	writeJSON(w, s.report.Winners)
}

func (s *Server) handleBias(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"subject_bias":        s.report.SubjectBias,
		"bias_meaningful":     s.report.BiasMeaningful,
		"grading_tendency":    s.report.Tendency,
		"tendency_meaningful": s.report.TendencyMeaningful,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	// Filter by model or subject when requested.
	model := r.URL.Query().Get("model")
	subject := r.URL.Query().Get("subject")

	rows := s.results
	if model != "" || subject != "" {
		rows = nil
		for _, res := range s.results {
			if model != "" && res.Model != model {
				continue
			}
			if subject != "" && res.Subject != subject {
				continue
			}
			rows = append(rows, res)
		}
	}

	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apperrors.Respond(w, http.StatusInternalServerError,
			apperrors.CodeInternalError, "failed to encode response")
	}
}
