package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/llalegg/trd-pb-sub003/internal/completion"
)

func (s *Server) handleListCompletions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

type markCompletedRequest struct {
	RoutineType   string `json:"routine_type"`
	ExerciseName  string `json:"exercise_name"`
	CompletedSets int    `json:"completed_sets"`
}

func (s *Server) handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	var req markCompletedRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RoutineType == "" || req.ExerciseName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "routine_type and exercise_name are required"})
		return
	}
	if req.CompletedSets < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "completed_sets must not be negative"})
		return
	}

	c := s.tracker.MarkCompleted(req.RoutineType, req.ExerciseName, req.CompletedSets)
	s.metrics.CounterCompletions.WithLabelValues(req.RoutineType).Inc()
	s.log.Debug("exercise completed",
		"routine_type", c.RoutineType,
		"exercise_name", c.ExerciseName,
		"sets", c.CompletedSets,
	)
	writeJSON(w, http.StatusCreated, c)
}

type completionResponse struct {
	Completed  bool                   `json:"completed"`
	Completion *completion.Completion `json:"completion,omitempty"`
}

// handleGetCompletion answers 200 for exercises with no record; absence
// just means not completed.
func (s *Server) handleGetCompletion(w http.ResponseWriter, r *http.Request) {
	routineType := pathParam(r, "routineType")
	exerciseName := pathParam(r, "exerciseName")

	resp := completionResponse{Completed: s.tracker.IsCompleted(routineType, exerciseName)}
	if c, ok := s.tracker.Completion(routineType, exerciseName); ok {
		resp.Completion = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearCompletions(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearAll()
	s.log.Info("completions cleared", "by", userInfoFromContext(r).Login)
	w.WriteHeader(http.StatusNoContent)
}

// pathParam returns a decoded URL parameter. chi routes on the raw path when
// it carries escapes such as %2F, leaving the parameter encoded.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
