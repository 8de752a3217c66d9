package middleware

import (
	"context"
	"net/http"
	"time"

	"scotia-sense/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	actorKey     contextKey = "actor"
)

func RequestID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

			loggerWithID := logger.With().Str("request_id", requestID).Logger()
			ctx = loggerWithID.WithContext(ctx)

			loggerWithID.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("request started")

			next.ServeHTTP(w, r.WithContext(ctx))

			duration := time.Since(start)
			loggerWithID.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("request completed")
		})
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ActorSource resolves the current actor from an authenticated user id. The
// session transport itself lives outside this service; the identity
// collaborator only hands us {id, role, is_admin, team_id}.
type ActorSource interface {
	ActorByUserID(ctx context.Context, userID string) (domain.Actor, error)
}

// Identity resolves the X-User-ID header into a domain.Actor and stores it
// on the request context. Requests without a resolvable actor are rejected
// before any handler runs.
func Identity(src ActorSource, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				http.Error(w, `{"message":"unauthenticated"}`, http.StatusUnauthorized)
				return
			}

			actor, err := src.ActorByUserID(r.Context(), userID)
			if err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Msg("failed to resolve actor")
				http.Error(w, `{"message":"unauthenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom returns the actor stored by Identity.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}
