package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/dutyrota/internal/adapters/repository"
	service "github.com/okian/dutyrota/internal/app"
	"github.com/okian/dutyrota/internal/domain/model"
	"github.com/okian/dutyrota/internal/domain/rotation"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", ErrBadRequest, err)
}

// classify returns the HTTP status and error code for err.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, rotation.ErrInsufficientHeadcount):
		return http.StatusUnprocessableEntity, "insufficient_headcount"
	case errors.Is(err, model.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrPersonNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrEmptyName),
		errors.Is(err, model.ErrEmptyEligibility),
		errors.Is(err, model.ErrUnknownSlot),
		errors.Is(err, rotation.ErrEmptyRoster),
		errors.Is(err, rotation.ErrUnknownAbsentee):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
