package domain

import (
	"time"
)

type Role string

const (
	RoleAthlete   Role = "athlete"
	RoleClinician Role = "clinician"
	RoleCoach     Role = "coach"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAthlete, RoleClinician, RoleCoach:
		return true
	}
	return false
}

type User struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber *string
	Password    string // bcrypt hash
	Role        *Role  // nil for admin-only accounts
	IsAdmin     bool
	TeamID      *string
	CreatedAt   time.Time
}

type Team struct {
	ID        string
	Name      string
	Sport     string
	CreatedAt time.Time
}

// Athlete is the role subtype row carrying the clinician/coach assignments
// that scope who may act on the athlete's clinical records.
type Athlete struct {
	UserID          string
	ClinicianUserID *string
	CoachUserID     *string
	Sport           string
	Gender          string
	Position        string
	DateOfBirth     *time.Time
}

type Clinician struct {
	UserID         string
	Specialisation string
	ContactInfo    string
}

type Coach struct {
	UserID     string
	Experience string
}

type Invite struct {
	Token       string
	Email       string
	PhoneNumber *string
	InviteRole  *Role // nil means team admin
	InvitedBy   string
	TeamID      *string
	Used        bool
	CreatedAt   time.Time
}

type BaselineScore struct {
	ID                     string
	AthleteUserID          string
	Season                 string
	CognitiveFunctionScore float64
	ChemicalMarkerScore    float64
	ClinicianUserID        *string
	CreatedAt              time.Time
}

type ScoreType string

const (
	ScoreTypeScreen    ScoreType = "screen"
	ScoreTypeCollision ScoreType = "collision"
	ScoreTypeRehab     ScoreType = "rehab"
)

func (t ScoreType) Valid() bool {
	switch t {
	case ScoreTypeScreen, ScoreTypeCollision, ScoreTypeRehab:
		return true
	}
	return false
}

type TestScore struct {
	ID                     string
	AthleteUserID          string
	ClinicianUserID        *string // nil when self-submitted
	ScoreType              ScoreType
	CognitiveFunctionScore float64
	ChemicalMarkerScore    float64
	Season                 string
	CreatedAt              time.Time
}

type InjuryLogEntry struct {
	ID              int64
	AthleteUserID   string
	ClinicianUserID string
	IsInjured       bool
	Reason          string
	LoggedAt        time.Time
}

// InjuryStatus is the latest-wins view over the injury log.
type InjuryStatus struct {
	IsInjured bool
	Since     *time.Time
	Reason    string
}

const (
	RecoveryStageMin = 1
	RecoveryStageMax = 6
)

type RecoveryStageEntry struct {
	ID              int64
	AthleteUserID   string
	ClinicianUserID string
	Stage           *int // 1..6, nil on injury clearance
	UpdatedAt       time.Time
}

type NoteVisibility string

const (
	NoteVisibilityShared        NoteVisibility = "shared"
	NoteVisibilityClinicianOnly NoteVisibility = "clinician"
)

type ClinicianNote struct {
	ID              int64
	TestScoreID     string
	AthleteUserID   string
	ClinicianUserID string
	Note            string
	Visibility      NoteVisibility
	CreatedAt       time.Time
}

// Attachment stores only the storage reference, never the bytes.
type Attachment struct {
	ID          int64
	TestScoreID string
	FileName    string
	StorageRef  string
	CreatedAt   time.Time
}
