package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/logger"
)

type startSessionRequest struct {
	LearnerID   string `json:"learner_id"`
	Language    string `json:"language"`
	SessionType string `json:"session_type"`
}

type submitResponseRequest struct {
	Response    string `json:"response"`
	TimeTakenMs int    `json:"time_taken_ms"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if req.LearnerID == "" {
		handleError(w, r, errors.NewValidationError("learner_id", "must not be empty"))
		return
	}

	session, err := s.Sessions.Start(r.Context(), req.LearnerID, req.Language, req.SessionType)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("session started: id=%s, type=%s", session.ID, session.SessionType)
	respondJSON(w, r, http.StatusCreated, session)
}

// handleNextActivity serves the next exercise. When the session is
// exhausted it ends the session and returns 404 with the summary so
// clients can tell "no more work" apart from "no such session".
func (s *Server) handleNextActivity(w http.ResponseWriter, r *http.Request) {
	activity, summary, err := s.Sessions.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	if activity == nil {
		respondJSON(w, r, http.StatusNotFound, map[string]any{
			"exhausted": true,
			"summary":   summary,
		})
		return
	}
	respondJSON(w, r, http.StatusOK, activity)
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req submitResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}

	result, err := s.Sessions.Submit(r.Context(), chi.URLParam(r, "id"), req.Response, req.TimeTakenMs)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if result.Correct {
		activitiesGraded.WithLabelValues("true").Inc()
	} else {
		activitiesGraded.WithLabelValues("false").Inc()
	}
	respondJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Sessions.End(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, summary)
}
