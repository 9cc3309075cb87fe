package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindInvalidInput:             http.StatusBadRequest,
	apperror.KindNotFound:                 http.StatusNotFound,
	apperror.KindDuplicatePeriod:          http.StatusConflict,
	apperror.KindIllegalTransition:        http.StatusConflict,
	apperror.KindPeriodClosed:             http.StatusConflict,
	apperror.KindCalculationInconsistency: http.StatusUnprocessableEntity,
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest
	}
	if status, ok := kindStatus[apperror.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	Kinded(w, status, string(apperror.KindOf(err)), err.Error())
}
