package api

import (
	"net/http"

	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/models"
)

type placementProbesRequest struct {
	Language string `json:"language"`
}

type placementAssessRequest struct {
	LearnerID string                     `json:"learner_id"`
	Language  string                     `json:"language"`
	Responses []models.PlacementResponse `json:"responses"`
}

func (s *Server) handlePlacementProbes(w http.ResponseWriter, r *http.Request) {
	var req placementProbesRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if !models.ValidLanguage(req.Language) {
		handleError(w, r, errors.NewValidationError("language", "must be latin or greek"))
		return
	}

	probes, err := s.Placement.Probes(r.Context(), models.Language(req.Language))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"probes": probes})
}

func (s *Server) handlePlacementAssess(w http.ResponseWriter, r *http.Request) {
	var req placementAssessRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if req.LearnerID == "" {
		handleError(w, r, errors.NewValidationError("learner_id", "must not be empty"))
		return
	}
	if !models.ValidLanguage(req.Language) {
		handleError(w, r, errors.NewValidationError("language", "must be latin or greek"))
		return
	}

	result, err := s.Placement.Assess(r.Context(), req.LearnerID, models.Language(req.Language), req.Responses)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, result)
}
