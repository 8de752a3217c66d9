package server

import (
	"net/http"

	"scotia-sense/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.teams.ListTeams(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]teamView, len(teams))
	for i, t := range teams {
		views[i] = toTeamView(t)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleTeamOverview(w http.ResponseWriter, r *http.Request) {
	rows, err := s.teams.Overview(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamWithAdminViews(rows))
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Sport string `json:"sport"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	team, err := s.teams.CreateTeam(r.Context(), actor(r), body.Name, body.Sport)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamView(*team))
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Sport string `json:"sport"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.teams.UpdateTeam(r.Context(), actor(r), chi.URLParam(r, "teamID"), body.Name, body.Sport); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.teams.DeleteTeam(r.Context(), actor(r), chi.URLParam(r, "teamID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.teams.ListUsers(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserWithTeamViews(rows))
}

func (s *Server) handleToggleAdmin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.teams.ToggleAdmin(r.Context(), actor(r), chi.URLParam(r, "userID"), body.IsAdmin); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReassignRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.teams.ReassignRole(r.Context(), actor(r), chi.URLParam(r, "userID"), domain.Role(body.Role)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFromTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.teams.RemoveFromTeam(r.Context(), actor(r), chi.URLParam(r, "userID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
