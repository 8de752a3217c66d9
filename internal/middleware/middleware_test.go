package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsClientHeader(t *testing.T) {
	handler := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied", rec.Header().Get("X-Request-ID"))
}

type stubActorSource struct {
	actor domain.Actor
	err   error
}

func (s stubActorSource) ActorByUserID(_ context.Context, userID string) (domain.Actor, error) {
	if s.err != nil {
		return domain.Actor{}, s.err
	}
	return s.actor, nil
}

func TestIdentityRejectsMissingHeader(t *testing.T) {
	handler := Identity(stubActorSource{}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityRejectsUnresolvableActor(t *testing.T) {
	src := stubActorSource{err: domain.NewNotFoundError("user ghost not found")}
	handler := Identity(src, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "ghost")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityStoresActor(t *testing.T) {
	want := domain.Actor{UserID: "u1", Kind: domain.ActorClinician, TeamID: "t1"}
	var got domain.Actor
	var ok bool

	handler := Identity(stubActorSource{actor: want}, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ActorFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, http.StatusOK, rec.Code)
}
