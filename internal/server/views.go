package server

import (
	"time"

	"scotia-sense/internal/domain"
	"scotia-sense/internal/repository"
	"scotia-sense/internal/service"
)

// Wire representations. Domain structs never cross the HTTP boundary
// directly; views control field names and keep password hashes out.

type userView struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Email       string       `json:"email"`
	PhoneNumber *string      `json:"phone_number,omitempty"`
	Role        *domain.Role `json:"role"`
	IsAdmin     bool         `json:"is_admin"`
	TeamID      *string      `json:"team_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

func toUserView(u domain.User) userView {
	return userView{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsAdmin:     u.IsAdmin,
		TeamID:      u.TeamID,
		CreatedAt:   u.CreatedAt,
	}
}

type athleteView struct {
	ClinicianUserID *string    `json:"clinician_user_id,omitempty"`
	CoachUserID     *string    `json:"coach_user_id,omitempty"`
	Sport           string     `json:"sport"`
	Gender          string     `json:"gender"`
	Position        string     `json:"position"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
}

type clinicianView struct {
	Specialisation string `json:"specialisation"`
	ContactInfo    string `json:"contact_info"`
}

type coachView struct {
	Experience string `json:"experience"`
}

type profileView struct {
	User      userView       `json:"user"`
	Athlete   *athleteView   `json:"athlete,omitempty"`
	Clinician *clinicianView `json:"clinician,omitempty"`
	Coach     *coachView     `json:"coach,omitempty"`
}

func toProfileView(p *service.Profile) profileView {
	view := profileView{User: toUserView(p.User)}
	if p.Athlete != nil {
		view.Athlete = &athleteView{
			ClinicianUserID: p.Athlete.ClinicianUserID,
			CoachUserID:     p.Athlete.CoachUserID,
			Sport:           p.Athlete.Sport,
			Gender:          p.Athlete.Gender,
			Position:        p.Athlete.Position,
			DateOfBirth:     p.Athlete.DateOfBirth,
		}
	}
	if p.Clinician != nil {
		view.Clinician = &clinicianView{
			Specialisation: p.Clinician.Specialisation,
			ContactInfo:    p.Clinician.ContactInfo,
		}
	}
	if p.Coach != nil {
		view.Coach = &coachView{Experience: p.Coach.Experience}
	}
	return view
}

type teamView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sport     string    `json:"sport"`
	CreatedAt time.Time `json:"created_at"`
}

func toTeamView(t domain.Team) teamView {
	return teamView{ID: t.ID, Name: t.Name, Sport: t.Sport, CreatedAt: t.CreatedAt}
}

type baselineView struct {
	ID                     string    `json:"id"`
	AthleteUserID          string    `json:"athlete_user_id"`
	Season                 string    `json:"season"`
	CognitiveFunctionScore float64   `json:"cognitive_function_score"`
	ChemicalMarkerScore    float64   `json:"chemical_marker_score"`
	ClinicianUserID        *string   `json:"clinician_user_id,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}

func toBaselineView(b domain.BaselineScore) baselineView {
	return baselineView{
		ID:                     b.ID,
		AthleteUserID:          b.AthleteUserID,
		Season:                 b.Season,
		CognitiveFunctionScore: b.CognitiveFunctionScore,
		ChemicalMarkerScore:    b.ChemicalMarkerScore,
		ClinicianUserID:        b.ClinicianUserID,
		CreatedAt:              b.CreatedAt,
	}
}

type testScoreView struct {
	ID                     string           `json:"id"`
	AthleteUserID          string           `json:"athlete_user_id"`
	ClinicianUserID        *string          `json:"clinician_user_id,omitempty"`
	ScoreType              domain.ScoreType `json:"score_type"`
	CognitiveFunctionScore float64          `json:"cognitive_function_score"`
	ChemicalMarkerScore    float64          `json:"chemical_marker_score"`
	Season                 string           `json:"season"`
	CreatedAt              time.Time        `json:"created_at"`
}

func toTestScoreView(t domain.TestScore) testScoreView {
	return testScoreView{
		ID:                     t.ID,
		AthleteUserID:          t.AthleteUserID,
		ClinicianUserID:        t.ClinicianUserID,
		ScoreType:              t.ScoreType,
		CognitiveFunctionScore: t.CognitiveFunctionScore,
		ChemicalMarkerScore:    t.ChemicalMarkerScore,
		Season:                 t.Season,
		CreatedAt:              t.CreatedAt,
	}
}

type deviationView struct {
	ChemicalMarkerDeviation    *float64 `json:"chemical_marker_deviation"`
	CognitiveFunctionDeviation *float64 `json:"cognitive_function_deviation"`
	CombinedDeviationScore     *float64 `json:"combined_deviation_score"`
}

func toDeviationView(d domain.Deviation) deviationView {
	return deviationView{
		ChemicalMarkerDeviation:    d.ChemicalMarkerDeviation,
		CognitiveFunctionDeviation: d.CognitiveFunctionDeviation,
		CombinedDeviationScore:     d.CombinedDeviationScore,
	}
}

type deviationPointView struct {
	TestScore testScoreView `json:"test_score"`
	Deviation deviationView `json:"deviation"`
}

type injuryStatusView struct {
	IsInjured bool       `json:"is_injured"`
	Since     *time.Time `json:"since,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

func toInjuryStatusView(s domain.InjuryStatus) injuryStatusView {
	return injuryStatusView{IsInjured: s.IsInjured, Since: s.Since, Reason: s.Reason}
}

type injuryLogEntryView struct {
	ID              int64     `json:"id"`
	ClinicianUserID string    `json:"clinician_user_id"`
	IsInjured       bool      `json:"is_injured"`
	Reason          string    `json:"reason,omitempty"`
	LoggedAt        time.Time `json:"logged_at"`
}

func toInjuryLogEntryView(e domain.InjuryLogEntry) injuryLogEntryView {
	return injuryLogEntryView{
		ID:              e.ID,
		ClinicianUserID: e.ClinicianUserID,
		IsInjured:       e.IsInjured,
		Reason:          e.Reason,
		LoggedAt:        e.LoggedAt,
	}
}

type attachmentView struct {
	ID          int64     `json:"id"`
	TestScoreID string    `json:"test_score_id"`
	FileName    string    `json:"file_name"`
	StorageRef  string    `json:"storage_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAttachmentView(a domain.Attachment) attachmentView {
	return attachmentView{
		ID:          a.ID,
		TestScoreID: a.TestScoreID,
		FileName:    a.FileName,
		StorageRef:  a.StorageRef,
		CreatedAt:   a.CreatedAt,
	}
}

type noteView struct {
	ID              int64                 `json:"id"`
	TestScoreID     string                `json:"test_score_id"`
	ClinicianUserID string                `json:"clinician_user_id"`
	Note            string                `json:"note"`
	Visibility      domain.NoteVisibility `json:"visibility"`
	CreatedAt       time.Time             `json:"created_at"`
}

func toNoteView(n domain.ClinicianNote) noteView {
	return noteView{
		ID:              n.ID,
		TestScoreID:     n.TestScoreID,
		ClinicianUserID: n.ClinicianUserID,
		Note:            n.Note,
		Visibility:      n.Visibility,
		CreatedAt:       n.CreatedAt,
	}
}

type inviteView struct {
	Token      string       `json:"token"`
	Email      string       `json:"email"`
	InviteRole *domain.Role `json:"invite_role"`
	TeamID     *string      `json:"team_id,omitempty"`
}

type directoryEntryView struct {
	UserID    string  `json:"user_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	TeamID    *string `json:"team_id,omitempty"`
}

func toDirectoryEntryViews(entries []repository.DirectoryEntry) []directoryEntryView {
	views := make([]directoryEntryView, len(entries))
	for i, e := range entries {
		views[i] = directoryEntryView{
			UserID:    e.UserID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			TeamID:    e.TeamID,
		}
	}
	return views
}

type clinicianAthleteView struct {
	AthleteUserID string           `json:"athlete_user_id"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	InjuryStatus  injuryStatusView `json:"injury_status"`
}

type coachAthleteView struct {
	AthleteUserID          string           `json:"athlete_user_id"`
	FirstName              string           `json:"first_name"`
	LastName               string           `json:"last_name"`
	Position               string           `json:"position"`
	InjuryStatus           injuryStatusView `json:"injury_status"`
	RecoveryStage          *int             `json:"recovery_stage"`
	CombinedDeviationScore *float64         `json:"combined_deviation_score"`
	LatestNote             *string          `json:"latest_note,omitempty"`
}

type teamWithAdminView struct {
	Team      teamView `json:"team"`
	AdminName *string  `json:"admin_name,omitempty"`
}

func toTeamWithAdminViews(rows []repository.TeamWithAdmin) []teamWithAdminView {
	views := make([]teamWithAdminView, len(rows))
	for i, row := range rows {
		views[i] = teamWithAdminView{Team: toTeamView(row.Team), AdminName: row.AdminName}
	}
	return views
}

type userWithTeamView struct {
	User     userView `json:"user"`
	TeamName *string  `json:"team_name,omitempty"`
}

func toUserWithTeamViews(rows []repository.UserWithTeam) []userWithTeamView {
	views := make([]userWithTeamView, len(rows))
	for i, row := range rows {
		views[i] = userWithTeamView{User: toUserView(row.User), TeamName: row.TeamName}
	}
	return views
}
