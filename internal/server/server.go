package server

import (
	"net/http"

	"scotia-sense/internal/domain"
	"scotia-sense/internal/metrics"
	mw "scotia-sense/internal/middleware"
	"scotia-sense/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server owns the HTTP surface. Handlers stay thin: decode, delegate to a
// service, encode.
type Server struct {
	baselines *service.BaselineService
	scores    *service.ScoreService
	recovery  *service.RecoveryService
	invites   *service.InviteService
	teams     *service.TeamService
	users     *service.UserService
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func New(
	baselines *service.BaselineService,
	scores *service.ScoreService,
	recovery *service.RecoveryService,
	invites *service.InviteService,
	teams *service.TeamService,
	users *service.UserService,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	return &Server{
		baselines: baselines,
		scores:    scores,
		recovery:  recovery,
		invites:   invites,
		teams:     teams,
		users:     users,
		metrics:   m,
		logger:    logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID(s.logger))
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Pre-registration surface: no session exists yet.
		r.Get("/teams", s.handleListTeams)
		r.Get("/invites/{token}", s.handleGetInvite)
		r.Post("/invites/{token}/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(mw.Identity(s.users, s.logger))

			r.Get("/me", s.handleProfile)
			r.Patch("/me", s.handleUpdateProfile)
			r.Get("/directory", s.handleDirectory)

			r.Get("/dashboard/athlete", s.handleAthleteDashboard)
			r.Get("/dashboard/clinician", s.handleClinicianDashboard)
			r.Get("/dashboard/coach", s.handleCoachDashboard)

			r.Post("/invites", s.handleIssueInvite)

			r.Route("/athletes/{athleteID}", func(r chi.Router) {
				r.Get("/", s.handleGetAthlete)
				r.Post("/baseline", s.handleCreateBaseline)
				r.Get("/baseline", s.handleBaselineStatus)
				r.Post("/scores", s.handleSubmitScore)
				r.Get("/scores", s.handleDeviationHistory)
				r.Get("/scores/{scoreID}/attachments", s.handleListAttachments)
				r.Get("/scores/{scoreID}/notes", s.handleListNotes)
				r.Get("/injury", s.handleInjuryStatus)
				r.Get("/injury/history", s.handleInjuryHistory)
				r.Post("/injury", s.handleLogInjury)
				r.Delete("/injury", s.handleClearInjury)
				r.Get("/recovery-stage", s.handleGetStage)
				r.Put("/recovery-stage", s.handleSetStage)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/teams", s.handleTeamOverview)
				r.Post("/teams", s.handleCreateTeam)
				r.Put("/teams/{teamID}", s.handleUpdateTeam)
				r.Delete("/teams/{teamID}", s.handleDeleteTeam)
				r.Get("/users", s.handleListUsers)
				r.Put("/users/{userID}/admin", s.handleToggleAdmin)
				r.Put("/users/{userID}/role", s.handleReassignRole)
				r.Delete("/users/{userID}/team", s.handleRemoveFromTeam)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actor returns the identity placed on the context by the Identity
// middleware. Routes outside the authenticated group never call this.
func actor(r *http.Request) domain.Actor {
	a, _ := mw.ActorFrom(r.Context())
	return a
}
