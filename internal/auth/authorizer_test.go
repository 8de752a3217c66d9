package auth

import (
	"testing"

	"scotia-sense/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string            { return &s }
func rolePtr(r domain.Role) *domain.Role { return &r }

var athlete = domain.Athlete{
	UserID:          "ath1",
	ClinicianUserID: strPtr("clin1"),
	CoachUserID:     strPtr("coach1"),
}

func TestCanReadClinical(t *testing.T) {
	assert.NoError(t, CanReadClinical(domain.Actor{UserID: "ath1", Kind: domain.ActorAthlete}, athlete))
	assert.NoError(t, CanReadClinical(domain.Actor{UserID: "clin1", Kind: domain.ActorClinician}, athlete))
	assert.NoError(t, CanReadClinical(domain.Actor{UserID: "coach1", Kind: domain.ActorCoach}, athlete))

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, CanReadClinical(domain.Actor{UserID: "ath2", Kind: domain.ActorAthlete}, athlete), &forbidden)
	require.ErrorAs(t, CanReadClinical(domain.Actor{UserID: "clin2", Kind: domain.ActorClinician}, athlete), &forbidden)
	require.ErrorAs(t, CanReadClinical(domain.Actor{UserID: "admin1", Kind: domain.ActorSuperAdmin, Admin: true}, athlete), &forbidden)
}

func TestCanReadClinicalUnassignedAthlete(t *testing.T) {
	orphan := domain.Athlete{UserID: "ath9"}

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, CanReadClinical(domain.Actor{UserID: "clin1", Kind: domain.ActorClinician}, orphan), &forbidden)
	assert.NoError(t, CanReadClinical(domain.Actor{UserID: "ath9", Kind: domain.ActorAthlete}, orphan))
}

func TestCanSubmitScores(t *testing.T) {
	assert.NoError(t, CanSubmitScores(domain.Actor{UserID: "ath1", Kind: domain.ActorAthlete}, athlete))
	assert.NoError(t, CanSubmitScores(domain.Actor{UserID: "clin1", Kind: domain.ActorClinician}, athlete))

	// Coaches observe, never write.
	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, CanSubmitScores(domain.Actor{UserID: "coach1", Kind: domain.ActorCoach}, athlete), &forbidden)
	require.ErrorAs(t, CanSubmitScores(domain.Actor{UserID: "clin2", Kind: domain.ActorClinician}, athlete), &forbidden)
}

func TestCanManageInjury(t *testing.T) {
	assert.NoError(t, CanManageInjury(domain.Actor{UserID: "clin1", Kind: domain.ActorClinician}, athlete))

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, CanManageInjury(domain.Actor{UserID: "ath1", Kind: domain.ActorAthlete}, athlete), &forbidden)
	require.ErrorAs(t, CanManageInjury(domain.Actor{UserID: "coach1", Kind: domain.ActorCoach}, athlete), &forbidden)
	require.ErrorAs(t, CanManageInjury(domain.Actor{UserID: "clin2", Kind: domain.ActorClinician}, athlete), &forbidden)
}

func TestCanInvite(t *testing.T) {
	super := domain.Actor{UserID: "s1", Kind: domain.ActorSuperAdmin, Admin: true}
	teamAdmin := domain.Actor{UserID: "ta1", Kind: domain.ActorTeamAdmin, TeamID: "t1", Admin: true}
	clinician := domain.Actor{UserID: "clin1", Kind: domain.ActorClinician, TeamID: "t1"}

	assert.NoError(t, CanInvite(super, nil))
	assert.NoError(t, CanInvite(super, rolePtr(domain.RoleClinician)))
	assert.NoError(t, CanInvite(teamAdmin, rolePtr(domain.RoleCoach)))
	assert.NoError(t, CanInvite(clinician, rolePtr(domain.RoleAthlete)))

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, CanInvite(clinician, rolePtr(domain.RoleCoach)), &forbidden)
	require.ErrorAs(t, CanInvite(clinician, nil), &forbidden)
	require.ErrorAs(t, CanInvite(domain.Actor{UserID: "ath1", Kind: domain.ActorAthlete}, rolePtr(domain.RoleAthlete)), &forbidden)
}

func TestCanAdministerTeams(t *testing.T) {
	assert.NoError(t, CanAdministerTeams(domain.Actor{Kind: domain.ActorSuperAdmin, Admin: true}))

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, CanAdministerTeams(domain.Actor{Kind: domain.ActorTeamAdmin, TeamID: "t1", Admin: true}), &forbidden)
}

func TestCanManageRoster(t *testing.T) {
	teamAdmin := domain.Actor{UserID: "ta1", Kind: domain.ActorTeamAdmin, TeamID: "t1", Admin: true}
	sameTeam := domain.User{ID: "u1", TeamID: strPtr("t1")}
	otherTeam := domain.User{ID: "u2", TeamID: strPtr("t2")}
	noTeam := domain.User{ID: "u3"}

	assert.NoError(t, CanManageRoster(teamAdmin, sameTeam))

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, CanManageRoster(teamAdmin, otherTeam), &forbidden)
	require.ErrorAs(t, CanManageRoster(teamAdmin, noTeam), &forbidden)
	require.ErrorAs(t, CanManageRoster(domain.Actor{UserID: "c1", Kind: domain.ActorCoach, TeamID: "t1"}, sameTeam), &forbidden)
}
