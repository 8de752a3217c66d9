package server

import (
	"net/http"
	"time"

	"scotia-sense/internal/domain"
	"scotia-sense/internal/service"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleIssueInvite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string  `json:"email"`
		PhoneNumber *string `json:"phone_number"`
		Role        *string `json:"role"`
		TeamID      *string `json:"team_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.IssueInviteInput{
		Email:       body.Email,
		PhoneNumber: body.PhoneNumber,
		TeamID:      body.TeamID,
	}
	if body.Role != nil {
		role := domain.Role(*body.Role)
		in.Role = &role
	}

	link, err := s.invites.IssueInvite(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"invite_link": link})
}

func (s *Server) handleGetInvite(w http.ResponseWriter, r *http.Request) {
	invite, err := s.invites.GetInvite(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inviteView{
		Token:      invite.Token,
		Email:      invite.Email,
		InviteRole: invite.InviteRole,
		TeamID:     invite.TeamID,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName      string  `json:"first_name"`
		LastName       string  `json:"last_name"`
		Password       string  `json:"password"`
		PhoneNumber    *string `json:"phone_number"`
		Specialisation string  `json:"specialisation"`
		ContactInfo    string  `json:"contact_info"`
		Experience     string  `json:"experience"`
		Sport          string  `json:"sport"`
		Gender         string  `json:"gender"`
		Position       string  `json:"position"`
		DateOfBirth    *string `json:"date_of_birth"`
		CoachUserID    *string `json:"coach_user_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.RegistrationInput{
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Password:       body.Password,
		PhoneNumber:    body.PhoneNumber,
		Specialisation: body.Specialisation,
		ContactInfo:    body.ContactInfo,
		Experience:     body.Experience,
		Sport:          body.Sport,
		Gender:         body.Gender,
		Position:       body.Position,
		CoachUserID:    body.CoachUserID,
	}
	if body.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *body.DateOfBirth)
		if err != nil {
			writeError(w, r, domain.NewValidationError("date_of_birth must be YYYY-MM-DD"))
			return
		}
		in.DateOfBirth = &dob
	}

	user, err := s.invites.ConsumeInvite(r.Context(), chi.URLParam(r, "token"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*user))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.Profile(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(profile))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email           *string `json:"email"`
		FirstName       *string `json:"first_name"`
		LastName        *string `json:"last_name"`
		Password        *string `json:"password"`
		CurrentPassword string  `json:"current_password"`
		Specialisation  *string `json:"specialisation"`
		ContactInfo     *string `json:"contact_info"`
		Experience      *string `json:"experience"`
		Sport           *string `json:"sport"`
		Gender          *string `json:"gender"`
		Position        *string `json:"position"`
		DateOfBirth     *string `json:"date_of_birth"`
		ClinicianUserID *string `json:"clinician_user_id"`
		CoachUserID     *string `json:"coach_user_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.UpdateProfileInput{
		Email:           body.Email,
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Password:        body.Password,
		CurrentPassword: body.CurrentPassword,
		Specialisation:  body.Specialisation,
		ContactInfo:     body.ContactInfo,
		Experience:      body.Experience,
		Sport:           body.Sport,
		Gender:          body.Gender,
		Position:        body.Position,
		ClinicianUserID: body.ClinicianUserID,
		CoachUserID:     body.CoachUserID,
	}
	if body.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *body.DateOfBirth)
		if err != nil {
			writeError(w, r, domain.NewValidationError("date_of_birth must be YYYY-MM-DD"))
			return
		}
		in.DateOfBirth = &dob
	}

	if err := s.users.UpdateProfile(r.Context(), actor(r), in); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	directory, err := s.users.Directory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Clinicians []directoryEntryView `json:"clinicians"`
		Coaches    []directoryEntryView `json:"coaches"`
	}{
		Clinicians: toDirectoryEntryViews(directory.Clinicians),
		Coaches:    toDirectoryEntryViews(directory.Coaches),
	})
}

func (s *Server) handleClinicianDashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.users.ClinicianDashboard(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]clinicianAthleteView, len(rows))
	for i, row := range rows {
		views[i] = clinicianAthleteView{
			AthleteUserID: row.AthleteUserID,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			InjuryStatus:  toInjuryStatusView(row.InjuryStatus),
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCoachDashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.users.CoachDashboard(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]coachAthleteView, len(rows))
	for i, row := range rows {
		views[i] = coachAthleteView{
			AthleteUserID:          row.AthleteUserID,
			FirstName:              row.FirstName,
			LastName:               row.LastName,
			Position:               row.Position,
			InjuryStatus:           toInjuryStatusView(row.InjuryStatus),
			RecoveryStage:          row.RecoveryStage,
			CombinedDeviationScore: row.CombinedDeviationScore,
			LatestNote:             row.LatestNote,
		}
	}
	writeJSON(w, http.StatusOK, views)
}
