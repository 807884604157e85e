package server

import (
	"net/http"
	"strconv"

	"github.com/llalegg/trd-pb-sub003/internal/models"
	"github.com/llalegg/trd-pb-sub003/internal/program"
	"github.com/llalegg/trd-pb-sub003/internal/timeline"
)

// timelineDefaultDays is the window shown when an athlete has no current phase.
const timelineDefaultDays = 28

func (s *Server) handleListPhases(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := uuidParam(w, r, "athleteID")
	if !ok {
		return
	}
	if _, err := s.store.GetAthlete(r.Context(), athleteID); err != nil {
		s.writeError(w, err)
		return
	}

	phases, err := s.store.ListPhases(r.Context(), athleteID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phases)
}

type createPhaseRequest struct {
	PhaseNumber int    `json:"phase_number"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (s *Server) handleCreatePhase(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := uuidParam(w, r, "athleteID")
	if !ok {
		return
	}
	var req createPhaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := models.Phase{AthleteID: athleteID, PhaseNumber: req.PhaseNumber}
	var err error
	if req.StartDate != "" {
		if p.StartDate, err = parseFlexDate(req.StartDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if req.EndDate != "" {
		if p.EndDate, err = parseFlexDate(req.EndDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.store.GetAthlete(r.Context(), athleteID); err != nil {
		s.writeError(w, err)
		return
	}

	created, err := s.store.CreatePhase(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleMilestones returns the derived program position of an athlete.
// ?phase=N selects a phase by number (default: the current phase) and
// ?expanded=true includes the phase's blocks.
func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := uuidParam(w, r, "athleteID")
	if !ok {
		return
	}
	phaseNumber, err := intQuery(r, "phase", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	expanded, _ := strconv.ParseBool(r.URL.Query().Get("expanded"))

	if _, err := s.store.GetAthlete(r.Context(), athleteID); err != nil {
		s.writeError(w, err)
		return
	}

	now := s.now()
	phase, blocks, err := program.Load(r.Context(), s.store, athleteID, phaseNumber, now)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, program.Summarize(blocks, phase, now, expanded))
}

// handleTimeline lays out the current phase's blocks on a day grid.
// start and end default to the phase range, else the next four weeks.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := uuidParam(w, r, "athleteID")
	if !ok {
		return
	}
	start, err := parseOptionalDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	end, err := parseOptionalDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if _, err := s.store.GetAthlete(r.Context(), athleteID); err != nil {
		s.writeError(w, err)
		return
	}

	now := s.now()
	phase, blocks, err := program.Load(r.Context(), s.store, athleteID, 0, now)
	if err != nil {
		s.writeError(w, err)
		return
	}

	from, to := now, now.AddDate(0, 0, timelineDefaultDays-1)
	if phase != nil {
		from, to = phase.StartDate, phase.EndDate
	}
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must not be before start"})
		return
	}

	writeJSON(w, http.StatusOK, timeline.Layout(blocks, from, to, now))
}
