package server

import (
	"net/http"

	"github.com/llalegg/trd-pb-sub003/internal/models"
)

const defaultHistoryLimit = 50

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	phaseID, ok := uuidParam(w, r, "phaseID")
	if !ok {
		return
	}
	if _, err := s.store.GetPhase(r.Context(), phaseID); err != nil {
		s.writeError(w, err)
		return
	}

	blocks, err := s.store.ListBlocks(r.Context(), phaseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	blockID, ok := uuidParam(w, r, "blockID")
	if !ok {
		return
	}
	b, err := s.store.GetBlock(r.Context(), blockID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type createBlockRequest struct {
	BlockNumber  int                `json:"block_number"`
	Season       string             `json:"season"`
	SubSeason    string             `json:"sub_season"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Status       models.BlockStatus `json:"status"`
	CurrentDay   models.CurrentDay  `json:"current_day"`
	NextBlockDue string             `json:"next_block_due"`
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	phaseID, ok := uuidParam(w, r, "phaseID")
	if !ok {
		return
	}
	var req createBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b := models.Block{
		PhaseID:     phaseID,
		BlockNumber: req.BlockNumber,
		Season:      req.Season,
		SubSeason:   req.SubSeason,
		Status:      req.Status,
		CurrentDay:  req.CurrentDay,
	}
	if b.Status == "" {
		b.Status = models.BlockDraft
	}

	var err error
	if req.StartDate != "" {
		if b.StartDate, err = parseFlexDate(req.StartDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if req.EndDate != "" {
		if b.EndDate, err = parseFlexDate(req.EndDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if b.NextBlockDue, err = parseOptionalDate(req.NextBlockDue); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := b.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	created, err := s.store.CreateBlock(r.Context(), b)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type transitionRequest struct {
	Status models.BlockStatus `json:"status"`
}

func (s *Server) handleTransitionBlock(w http.ResponseWriter, r *http.Request) {
	blockID, ok := uuidParam(w, r, "blockID")
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := userInfoFromContext(r)
	change, err := s.lifecycle.Transition(r.Context(), blockID, req.Status, user.Login)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func (s *Server) handleUpdateCurrentDay(w http.ResponseWriter, r *http.Request) {
	blockID, ok := uuidParam(w, r, "blockID")
	if !ok {
		return
	}
	var cd models.CurrentDay
	if !decodeJSON(w, r, &cd) {
		return
	}
	if cd.Week < 0 || cd.Day < 0 {
		s.writeError(w, models.ErrCurrentDayRange)
		return
	}

	if err := s.store.UpdateBlockCurrentDay(r.Context(), blockID, cd); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.store.GetBlock(r.Context(), blockID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleBlockHistory(w http.ResponseWriter, r *http.Request) {
	blockID, ok := uuidParam(w, r, "blockID")
	if !ok {
		return
	}
	limit, err := intQuery(r, "limit", defaultHistoryLimit)
	if err != nil || limit <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		return
	}
	if _, err := s.store.GetBlock(r.Context(), blockID); err != nil {
		s.writeError(w, err)
		return
	}

	changes, err := s.store.QueryStatusChanges(r.Context(), blockID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}
