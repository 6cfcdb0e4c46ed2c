package errors

import "fmt"

// Error codes
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeStatePrereqMissing = "STATE_PREREQUISITE_MISSING"
	ErrCodeNoPendingActivity  = "NO_PENDING_ACTIVITY"
	ErrCodeSessionClosed      = "SESSION_CLOSED"
	ErrCodeNoCurriculumData   = "NO_CURRICULUM_DATA"
	ErrCodeEvaluatorFailure   = "EVALUATOR_FAILURE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "SESSION_CLOSED")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewStatePrerequisiteMissingError signals that a session type needs a
// prior placement (no learner-language state exists yet).
func NewStatePrerequisiteMissingError(learnerID string, language string) *AppError {
	return &AppError{
		Code:    ErrCodeStatePrereqMissing,
		Message: fmt.Sprintf("no state for learner %s in %s: run placement first", learnerID, language),
		Status:  409,
	}
}

// NewNoPendingActivityError signals submit without a prior next.
func NewNoPendingActivityError(sessionID string) *AppError {
	return &AppError{
		Code:    ErrCodeNoPendingActivity,
		Message: fmt.Sprintf("session %s has no pending activity", sessionID),
		Status:  409,
	}
}

// NewSessionClosedError signals an operation on an ended session.
func NewSessionClosedError(sessionID string) *AppError {
	return &AppError{
		Code:    ErrCodeSessionClosed,
		Message: fmt.Sprintf("session %s is already ended", sessionID),
		Status:  409,
	}
}

// NewNoCurriculumDataError signals placement with empty vocabulary and
// grammar curricula.
func NewNoCurriculumDataError(language string) *AppError {
	return &AppError{
		Code:    ErrCodeNoCurriculumData,
		Message: fmt.Sprintf("no curriculum data available for %s", language),
		Status:  422,
	}
}

// NewEvaluatorFailureError signals that the response evaluator failed after
// its internal retry. The pending activity remains pending.
func NewEvaluatorFailureError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeEvaluatorFailure,
		Message: "response evaluator unavailable, please retry",
		Status:  502,
		Err:     err,
	}
}
