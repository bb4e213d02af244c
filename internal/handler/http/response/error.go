package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/validator"
)

// publicMessage strips the category prefix that wrapped domain errors carry.
func publicMessage(err, category error) string {
	return strings.TrimPrefix(err.Error(), category.Error()+": ")
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, leave.ErrValidation):
		ValidationError(w, nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrConflict):
		Conflict(w, publicMessage(err, leave.ErrConflict))
	case errors.Is(err, leave.ErrInvalidState):
		InvalidState(w, err.Error())
	case errors.Is(err, leave.ErrForbidden):
		Forbidden(w, publicMessage(err, leave.ErrForbidden))
	case errors.Is(err, leave.ErrNotFound):
		NotFound(w, publicMessage(err, leave.ErrNotFound))

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
