package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses by their kind.
// Fatal errors are logged and never shown to the client.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		ValidationError(w, map[string]string{"request": err.Error()})
	case apperror.KindInvalidTransition:
		InvalidTransition(w, err.Error())
	case apperror.KindNotFound:
		NotFound(w, err.Error())
	case apperror.KindForbidden:
		Forbidden(w, err.Error())
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
