package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/models"
)

type createLearnerRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateLearner(w http.ResponseWriter, r *http.Request) {
	var req createLearnerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	learner, err := s.Learners.Create(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, learner)
}

func (s *Server) handleListLearners(w http.ResponseWriter, r *http.Request) {
	learners, err := s.Learners.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"learners": learners})
}

func (s *Server) handleGetLearner(w http.ResponseWriter, r *http.Request) {
	learner, err := s.Learners.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, learner)
}

func (s *Server) handleLearnerState(w http.ResponseWriter, r *http.Request) {
	language := chi.URLParam(r, "language")
	if !models.ValidLanguage(language) {
		handleError(w, r, errors.NewValidationError("language", "must be latin or greek"))
		return
	}

	state, err := s.Learners.State(r.Context(), chi.URLParam(r, "id"), models.Language(language))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, state)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	learnerID := chi.URLParam(r, "id")
	language := chi.URLParam(r, "language")

	recommended, focus, err := s.Sessions.Recommend(r.Context(), learnerID, language)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("recommended %s session for learner %s", recommended, learnerID)
	payload := map[string]any{
		"learner_id":   learnerID,
		"language":     language,
		"session_type": recommended,
	}
	if focus != "" {
		payload["focus_capacity"] = focus
	}
	respondJSON(w, r, http.StatusOK, payload)
}
