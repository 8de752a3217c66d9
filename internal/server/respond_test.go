package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"scotia-sense/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", domain.NewValidationError("bad input"), http.StatusBadRequest},
		{"invalid token", domain.NewInvalidTokenError("used"), http.StatusBadRequest},
		{"forbidden", domain.NewForbiddenError("no"), http.StatusForbidden},
		{"not found", domain.NewNotFoundError("gone"), http.StatusNotFound},
		{"duplicate", domain.NewDuplicateError("again"), http.StatusConflict},
		{"conflict", domain.NewConflictError("members remain"), http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("secret infrastructure detail"))

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Message)
}

func TestWriteErrorWrappedDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := domain.NewDuplicateError("baseline exists")
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errWrap{wrapped})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

type errWrap struct{ inner error }

func (e errWrap) Error() string { return "wrapped: " + e.inner.Error() }
func (e errWrap) Unwrap() error { return e.inner }
