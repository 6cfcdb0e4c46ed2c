package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/models"
)

func (s *Server) handleCurriculumVocabulary(w http.ResponseWriter, r *http.Request) {
	language := chi.URLParam(r, "language")
	if !models.ValidLanguage(language) {
		handleError(w, r, errors.NewValidationError("language", "must be latin or greek"))
		return
	}

	sets, err := s.Curriculum.VocabularySummaries(r.Context(), models.Language(language))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"sets": sets})
}

func (s *Server) handleCurriculumGrammar(w http.ResponseWriter, r *http.Request) {
	language := chi.URLParam(r, "language")
	if !models.ValidLanguage(language) {
		handleError(w, r, errors.NewValidationError("language", "must be latin or greek"))
		return
	}

	concepts, err := s.Curriculum.GrammarConcepts(r.Context(), models.Language(language))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"concepts": concepts})
}
