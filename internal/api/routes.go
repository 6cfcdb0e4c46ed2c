package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(metricsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/learners", s.handleCreateLearner)
		r.Get("/learners", s.handleListLearners)
		r.Get("/learners/{id}", s.handleGetLearner)
		r.Get("/learners/{id}/state/{language}", s.handleLearnerState)
		r.Get("/learners/{id}/recommendation/{language}", s.handleRecommendation)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/{id}/next", s.handleNextActivity)
		r.Post("/sessions/{id}/submit", s.handleSubmitResponse)
		r.Post("/sessions/{id}/end", s.handleEndSession)

		r.Post("/placement/probes", s.handlePlacementProbes)
		r.Post("/placement", s.handlePlacementAssess)

		r.Get("/curriculum/{language}/vocabulary", s.handleCurriculumVocabulary)
		r.Get("/curriculum/{language}/grammar", s.handleCurriculumGrammar)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
