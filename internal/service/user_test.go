package service

import (
	"context"
	"testing"
	"time"

	"scotia-sense/internal/constants"
	"scotia-sense/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestActorByUserID(t *testing.T) {
	f := newFixture(t)
	teamID := f.seedTeam(t, "Classified")

	clinician := f.seedUser(t, rolePtr(domain.RoleClinician), false, &teamID)
	teamAdmin := f.seedUser(t, nil, true, &teamID)
	super := f.seedUser(t, nil, true, nil)

	actor, err := f.userSvc.ActorByUserID(context.Background(), clinician.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActorClinician, actor.Kind)
	assert.Equal(t, teamID, actor.TeamID)

	actor, err = f.userSvc.ActorByUserID(context.Background(), teamAdmin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActorTeamAdmin, actor.Kind)

	actor, err = f.userSvc.ActorByUserID(context.Background(), super.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActorSuperAdmin, actor.Kind)

	var notFound *domain.NotFoundError
	_, err = f.userSvc.ActorByUserID(context.Background(), "ghost")
	require.ErrorAs(t, err, &notFound)
}

func TestProfileIncludesRoleSubtype(t *testing.T) {
	f := newFixture(t)
	clinician, athlete, _ := f.seedClinicianWithAthlete(t)

	profile, err := f.userSvc.Profile(context.Background(), clinician)
	require.NoError(t, err)
	require.NotNil(t, profile.Clinician)
	assert.Nil(t, profile.Athlete)

	profile, err = f.userSvc.Profile(context.Background(), athlete)
	require.NoError(t, err)
	require.NotNil(t, profile.Athlete)
	assert.Equal(t, "flanker", profile.Athlete.Position)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	f := newFixture(t)
	teamID := f.seedTeam(t, "Secure")

	hash, err := bcrypt.GenerateFromPassword([]byte("oldpassword"), constants.BcryptCost)
	require.NoError(t, err)
	u := domain.User{
		ID: "pw-user", FirstName: "P", LastName: "W",
		Email: "pw@example.com", Password: string(hash),
		Role: rolePtr(domain.RoleCoach), TeamID: &teamID, CreatedAt: time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), &u))
	require.NoError(t, f.users.CreateCoach(context.Background(), &domain.Coach{UserID: u.ID}))
	actor := domain.Actor{UserID: u.ID, Kind: domain.ActorCoach, TeamID: teamID}

	var validation *domain.ValidationError
	err = f.userSvc.UpdateProfile(context.Background(), actor, UpdateProfileInput{
		Password: strPtr("newpassword"), CurrentPassword: "wrong",
	})
	require.ErrorAs(t, err, &validation)

	err = f.userSvc.UpdateProfile(context.Background(), actor, UpdateProfileInput{
		Password: strPtr("newpassword"),
	})
	require.ErrorAs(t, err, &validation)

	require.NoError(t, f.userSvc.UpdateProfile(context.Background(), actor, UpdateProfileInput{
		Password: strPtr("newpassword"), CurrentPassword: "oldpassword",
	}))

	updated, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newpassword")))
}

func TestUpdateProfileAthleteReassignsClinician(t *testing.T) {
	f := newFixture(t)
	_, athlete, athleteID := f.seedClinicianWithAthlete(t)

	newClin := f.seedUser(t, rolePtr(domain.RoleClinician), false, nil)
	require.NoError(t, f.users.CreateClinician(context.Background(), &domain.Clinician{UserID: newClin.ID}))

	require.NoError(t, f.userSvc.UpdateProfile(context.Background(), athlete, UpdateProfileInput{
		ClinicianUserID: &newClin.ID,
		Position:        strPtr("lock"),
	}))

	row, err := f.users.GetAthlete(context.Background(), athleteID)
	require.NoError(t, err)
	require.NotNil(t, row.ClinicianUserID)
	assert.Equal(t, newClin.ID, *row.ClinicianUserID)
	assert.Equal(t, "lock", row.Position)

	// Pointing at a coach as clinician is a dangling reference.
	coach := f.seedUser(t, rolePtr(domain.RoleCoach), false, nil)
	var notFound *domain.NotFoundError
	err = f.userSvc.UpdateProfile(context.Background(), athlete, UpdateProfileInput{
		ClinicianUserID: &coach.ID,
	})
	require.ErrorAs(t, err, &notFound)
}

func TestDirectory(t *testing.T) {
	f := newFixture(t)
	f.seedClinicianWithAthlete(t)
	coach := f.seedUser(t, rolePtr(domain.RoleCoach), false, nil)
	require.NoError(t, f.users.CreateCoach(context.Background(), &domain.Coach{UserID: coach.ID}))

	directory, err := f.userSvc.Directory(context.Background())
	require.NoError(t, err)
	assert.Len(t, directory.Clinicians, 1)
	assert.Len(t, directory.Coaches, 1)
}

func TestClinicianDashboard(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "ruck contact")
	require.NoError(t, err)

	rows, err := f.userSvc.ClinicianDashboard(context.Background(), clinician)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, athleteID, rows[0].AthleteUserID)
	assert.True(t, rows[0].InjuryStatus.IsInjured)

	var forbidden *domain.ForbiddenError
	_, err = f.userSvc.ClinicianDashboard(context.Background(), domain.Actor{UserID: athleteID, Kind: domain.ActorAthlete})
	require.ErrorAs(t, err, &forbidden)
}

func TestCoachDashboard(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	coachUser := f.seedUser(t, rolePtr(domain.RoleCoach), false, nil)
	require.NoError(t, f.users.CreateCoach(context.Background(), &domain.Coach{UserID: coachUser.ID}))
	require.NoError(t, f.users.UpdateAthleteCoach(context.Background(), athleteID, coachUser.ID))
	coach := domain.Actor{UserID: coachUser.ID, Kind: domain.ActorCoach}

	f.seedBaseline(t, clinician, athleteID, 100, 2)
	_, err := f.recoverySvc.LogInjury(context.Background(), clinician, athleteID, "collision")
	require.NoError(t, err)
	_, err = f.recoverySvc.SetStage(context.Background(), clinician, athleteID, 2)
	require.NoError(t, err)
	_, err = f.scoreSvc.SubmitTestScore(context.Background(), clinician, SubmitTestScoreInput{
		AthleteUserID:          athleteID,
		ScoreType:              domain.ScoreTypeRehab,
		CognitiveFunctionScore: f64Ptr(90),
		ChemicalMarkerScore:    f64Ptr(2.2),
		Note:                   "improving steadily",
	})
	require.NoError(t, err)

	rows, err := f.userSvc.CoachDashboard(context.Background(), coach)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, athleteID, row.AthleteUserID)
	assert.True(t, row.InjuryStatus.IsInjured)
	require.NotNil(t, row.RecoveryStage)
	assert.Equal(t, 2, *row.RecoveryStage)
	require.NotNil(t, row.CombinedDeviationScore)
	assert.InDelta(t, 0.0, *row.CombinedDeviationScore, 1e-9)
	require.NotNil(t, row.LatestNote)
	assert.Equal(t, "improving steadily", *row.LatestNote)
}

func TestCoachDashboardHidesClinicianOnlyNotes(t *testing.T) {
	f := newFixture(t)
	clinician, _, athleteID := f.seedClinicianWithAthlete(t)

	coachUser := f.seedUser(t, rolePtr(domain.RoleCoach), false, nil)
	require.NoError(t, f.users.CreateCoach(context.Background(), &domain.Coach{UserID: coachUser.ID}))
	require.NoError(t, f.users.UpdateAthleteCoach(context.Background(), athleteID, coachUser.ID))

	_, err := f.scoreSvc.SubmitTestScore(context.Background(), clinician, SubmitTestScoreInput{
		AthleteUserID:          athleteID,
		ScoreType:              domain.ScoreTypeScreen,
		CognitiveFunctionScore: f64Ptr(90),
		ChemicalMarkerScore:    f64Ptr(2),
		Note:                   "suspected malingering",
		NoteVisibility:         domain.NoteVisibilityClinicianOnly,
	})
	require.NoError(t, err)

	rows, err := f.userSvc.CoachDashboard(context.Background(), domain.Actor{UserID: coachUser.ID, Kind: domain.ActorCoach})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].LatestNote)
}
