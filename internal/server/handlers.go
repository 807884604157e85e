package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/llalegg/trd-pb-sub003/internal/lifecycle"
	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/program"
	"github.com/llalegg/trd-pb-sub003/internal/storage"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := s.store.ListAthletes(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, athletes)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetProgramStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type createAthleteRequest struct {
	Name  string `json:"name"`
	Sport string `json:"sport"`
}

func (s *Server) handleCreateAthlete(w http.ResponseWriter, r *http.Request) {
	var req createAthleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": models.ErrEmptyName.Error()})
		return
	}

	a, err := s.store.CreateAthlete(r.Context(), models.Athlete{Name: req.Name, Sport: req.Sport})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain and storage errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, program.ErrPhaseNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyActive),
		errors.Is(err, storage.ErrConflict),
		errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		status = http.StatusConflict
	case isValidationError(err):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func isValidationError(err error) bool {
	for _, target := range []error{
		models.ErrMissingDates,
		models.ErrDateOrder,
		models.ErrBlockNumber,
		models.ErrPhaseNumber,
		models.ErrInvalidStatus,
		models.ErrCurrentDayRange,
		models.ErrEmptyName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// uuidParam parses a chi URL parameter as a UUID, writing a 400 on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

// parseFlexDate accepts a calendar date or a full RFC 3339 timestamp.
func parseFlexDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

// parseOptionalDate is parseFlexDate that maps "" to nil.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseFlexDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
