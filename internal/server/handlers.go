package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/liftsync/internal/mcp"
	"github.com/claude/liftsync/internal/planner"
)

// PublishRequest is the body of POST /api/v1/plan/publish.
type PublishRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	snap, err := s.plans.Load(r.Context(), force)
	if err != nil {
		s.log.Error("plan load error", "force", force, "error", err)
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetSupplemental(w http.ResponseWriter, r *http.Request) {
	bucket, err := s.plans.LoadSupplemental(r.Context())
	if err != nil {
		s.log.Error("supplemental load error", "error", err)
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, bucket)
}

func (s *Server) handleSaveLogs(w http.ResponseWriter, r *http.Request) {
	var req mcp.LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Date) == "" || len(req.Entries) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date and entries are required"})
		return
	}

	res, err := s.plans.SaveLogs(r.Context(), req.Date, req.Entries)
	if err != nil {
		s.log.Error("save logs error", "date", req.Date, "error", err)
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("logs saved", "user", userInfoFromContext(r).Login, "sheet", res.Sheet, "updates", len(res.Updates))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and body are required"})
		return
	}

	res, err := s.plans.Publish(r.Context(), req.Title, planner.Text(req.Body))
	if err != nil {
		s.log.Error("publish error", "title", req.Title, "error", err)
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := s.plans.History(r.Context(), queryLimit(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleLoggedExercises(w http.ResponseWriter, r *http.Request) {
	entries, err := s.plans.LoggedExercises(r.Context(), queryLimit(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// queryLimit reads ?limit=, defaulting to 50.
func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 50
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// errorStatus maps plan errors to HTTP status codes. Anything not known to
// be a missing plan is treated as an upstream failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, planner.ErrNoPlanData), errors.Is(err, planner.ErrNoWeeklySheet):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
