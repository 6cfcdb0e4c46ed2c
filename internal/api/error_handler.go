package api

import (
	stderrors "errors"
	"net/http"

	"github.com/marcusv/linguaflash/internal/errors"
	"github.com/marcusv/linguaflash/internal/logger"
)

// handleError centralizes error handling for HTTP responses. Every error
// leaves the API as a JSON envelope with a stable code.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	respondJSON(w, r, appErr.Status, map[string]any{
		"error": map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
