package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes. Anything
// outside the taxonomy is a 500 and gets logged rather than leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr   *domain.ValidationError
		forbiddenErr    *domain.ForbiddenError
		notFoundErr     *domain.NotFoundError
		duplicateErr    *domain.DuplicateError
		conflictErr     *domain.ConflictError
		invalidTokenErr *domain.InvalidTokenError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: validationErr.Msg})
	case errors.As(err, &invalidTokenErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: invalidTokenErr.Msg})
	case errors.As(err, &forbiddenErr):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: forbiddenErr.Msg})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: notFoundErr.Msg})
	case errors.As(err, &duplicateErr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: duplicateErr.Msg})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: conflictErr.Msg})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("invalid request body: %v", err)
	}
	return nil
}
