package server

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"scotia-sense/internal/domain"
	"scotia-sense/internal/service"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleGetAthlete(w http.ResponseWriter, r *http.Request) {
	athlete, err := s.users.Athlete(r.Context(), actor(r), chi.URLParam(r, "athleteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, athleteView{
		ClinicianUserID: athlete.ClinicianUserID,
		CoachUserID:     athlete.CoachUserID,
		Sport:           athlete.Sport,
		Gender:          athlete.Gender,
		Position:        athlete.Position,
		DateOfBirth:     athlete.DateOfBirth,
	})
}

func (s *Server) handleCreateBaseline(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CognitiveFunctionScore *float64 `json:"cognitive_function_score"`
		ChemicalMarkerScore    *float64 `json:"chemical_marker_score"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	baseline, err := s.baselines.CreateBaseline(r.Context(), actor(r), service.CreateBaselineInput{
		AthleteUserID:          chi.URLParam(r, "athleteID"),
		CognitiveFunctionScore: body.CognitiveFunctionScore,
		ChemicalMarkerScore:    body.ChemicalMarkerScore,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBaselineView(*baseline))
}

// handleBaselineStatus reports whether the athlete has a baseline for the
// requested season, defaulting to the season in progress.
func (s *Server) handleBaselineStatus(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	if season == "" {
		season = domain.CurrentSeason()
	}

	has, err := s.baselines.HasBaseline(r.Context(), actor(r), chi.URLParam(r, "athleteID"), season)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "has_baseline": has})
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseSubmitScore(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.scores.SubmitTestScore(r.Context(), actor(r), *in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := struct {
		TestScore testScoreView  `json:"test_score"`
		Deviation *deviationView `json:"deviation"`
	}{TestScore: toTestScoreView(result.TestScore)}
	if result.Deviation != nil {
		view := toDeviationView(*result.Deviation)
		resp.Deviation = &view
	}
	writeJSON(w, http.StatusCreated, resp)
}

// parseSubmitScore accepts either a plain JSON submission or a multipart
// form carrying attachment files alongside the score fields.
func (s *Server) parseSubmitScore(r *http.Request) (*service.SubmitTestScoreInput, error) {
	in := service.SubmitTestScoreInput{AthleteUserID: chi.URLParam(r, "athleteID")}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var body struct {
			ScoreType              string   `json:"score_type"`
			CognitiveFunctionScore *float64 `json:"cognitive_function_score"`
			ChemicalMarkerScore    *float64 `json:"chemical_marker_score"`
			Injured                bool     `json:"injured"`
			InjuryReason           string   `json:"injury_reason"`
			Note                   string   `json:"note"`
			NoteVisibility         string   `json:"note_visibility"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return nil, err
		}
		in.ScoreType = domain.ScoreType(body.ScoreType)
		in.CognitiveFunctionScore = body.CognitiveFunctionScore
		in.ChemicalMarkerScore = body.ChemicalMarkerScore
		in.Injured = body.Injured
		in.InjuryReason = body.InjuryReason
		in.Note = body.Note
		in.NoteVisibility = domain.NoteVisibility(body.NoteVisibility)
		return &in, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, domain.NewValidationError("invalid multipart form: %v", err)
	}

	in.ScoreType = domain.ScoreType(r.FormValue("score_type"))
	in.Injured = r.FormValue("injured") == "true"
	in.InjuryReason = r.FormValue("injury_reason")
	in.Note = r.FormValue("note")
	in.NoteVisibility = domain.NoteVisibility(r.FormValue("note_visibility"))

	for _, field := range []struct {
		name string
		dst  **float64
	}{
		{"cognitive_function_score", &in.CognitiveFunctionScore},
		{"chemical_marker_score", &in.ChemicalMarkerScore},
	} {
		raw := r.FormValue(field.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.NewValidationError("%s must be a number", field.name)
		}
		*field.dst = &v
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["attachments"] {
			file, err := header.Open()
			if err != nil {
				return nil, domain.NewValidationError("unreadable attachment %s", header.Filename)
			}
			defer func(f multipart.File) { _ = f.Close() }(file)
			in.Attachments = append(in.Attachments, service.AttachmentUpload{
				FileName: header.Filename,
				Content:  file,
			})
		}
	}

	return &in, nil
}

func (s *Server) handleDeviationHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.scores.DeviationHistory(r.Context(), actor(r), chi.URLParam(r, "athleteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]deviationPointView, len(history))
	for i, point := range history {
		views[i] = deviationPointView{
			TestScore: toTestScoreView(point.TestScore),
			Deviation: toDeviationView(point.Deviation),
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	attachments, err := s.scores.Attachments(r.Context(), actor(r), chi.URLParam(r, "athleteID"), chi.URLParam(r, "scoreID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]attachmentView, len(attachments))
	for i, a := range attachments {
		views[i] = toAttachmentView(a)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.scores.Notes(r.Context(), actor(r), chi.URLParam(r, "athleteID"), chi.URLParam(r, "scoreID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]noteView, len(notes))
	for i, n := range notes {
		views[i] = toNoteView(n)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleInjuryStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.recovery.CurrentStatus(r.Context(), actor(r), chi.URLParam(r, "athleteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInjuryStatusView(status))
}

func (s *Server) handleInjuryHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.recovery.InjuryHistory(r.Context(), actor(r), chi.URLParam(r, "athleteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]injuryLogEntryView, len(entries))
	for i, e := range entries {
		views[i] = toInjuryLogEntryView(e)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleLogInjury(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.recovery.LogInjury(r.Context(), actor(r), chi.URLParam(r, "athleteID"), body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInjuryStatusView(domain.InjuryStatus{
		IsInjured: true,
		Since:     &entry.LoggedAt,
		Reason:    entry.Reason,
	}))
}

func (s *Server) handleClearInjury(w http.ResponseWriter, r *http.Request) {
	if err := s.recovery.ClearInjury(r.Context(), actor(r), chi.URLParam(r, "athleteID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInjuryStatusView(domain.InjuryStatus{IsInjured: false}))
}

func (s *Server) handleGetStage(w http.ResponseWriter, r *http.Request) {
	stage, err := s.recovery.CurrentStage(r.Context(), actor(r), chi.URLParam(r, "athleteID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*int{"recovery_stage": stage})
}

func (s *Server) handleSetStage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Stage *int `json:"stage"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Stage == nil {
		writeError(w, r, domain.NewValidationError("stage is required"))
		return
	}

	entry, err := s.recovery.SetStage(r.Context(), actor(r), chi.URLParam(r, "athleteID"), *body.Stage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*int{"recovery_stage": entry.Stage})
}

// handleAthleteDashboard aggregates the athlete's own clinical picture:
// injury status, recovery stage, seasonal baseline presence and the
// deviation-annotated score history.
func (s *Server) handleAthleteDashboard(w http.ResponseWriter, r *http.Request) {
	act := actor(r)
	if act.Kind != domain.ActorAthlete {
		writeError(w, r, domain.NewForbiddenError("athlete dashboard is athlete-only"))
		return
	}

	status, err := s.recovery.CurrentStatus(r.Context(), act, act.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stage, err := s.recovery.CurrentStage(r.Context(), act, act.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	season := domain.CurrentSeason()
	hasBaseline, err := s.baselines.HasBaseline(r.Context(), act, act.UserID, season)
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := s.scores.DeviationHistory(r.Context(), act, act.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	points := make([]deviationPointView, len(history))
	for i, point := range history {
		points[i] = deviationPointView{
			TestScore: toTestScoreView(point.TestScore),
			Deviation: toDeviationView(point.Deviation),
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Season        string               `json:"season"`
		HasBaseline   bool                 `json:"has_baseline"`
		InjuryStatus  injuryStatusView     `json:"injury_status"`
		RecoveryStage *int                 `json:"recovery_stage"`
		History       []deviationPointView `json:"history"`
	}{
		Season:        season,
		HasBaseline:   hasBaseline,
		InjuryStatus:  toInjuryStatusView(status),
		RecoveryStage: stage,
		History:       points,
	})
}
