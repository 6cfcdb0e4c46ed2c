package api

import (
	"net/http"

	"github.com/marcusv/linguaflash/internal/logger"
)

// handleHealth is the liveness probe: 200 whenever the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReady is the readiness probe: 200 only when the database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			logger.FromContext(ctx).Warn("readiness check failed - database: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Database unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
