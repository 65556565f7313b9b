package api

import (
	"errors"
	"net/http"

	"github.com/hatchling-app/profile-api/internal/domain"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound

	// A display request against a profile missing its name or birthday is
	// a state conflict, not a malformed request.
	case errors.Is(err, domain.ErrProfileIncomplete):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
