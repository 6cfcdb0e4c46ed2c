package api

import (
	"encoding/json"
	"net/http"

	"github.com/marcusv/linguaflash/internal/db"
	"github.com/marcusv/linguaflash/internal/logger"
	"github.com/marcusv/linguaflash/internal/services"
)

type Server struct {
	DB         *db.DB
	Learners   services.LearnerService
	Sessions   services.SessionService
	Placement  services.PlacementService
	Curriculum services.CurriculumService
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
