package service

import (
	"context"
	"testing"

	"scotia-sense/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) superadmin(t *testing.T) domain.Actor {
	t.Helper()
	u := f.seedUser(t, nil, true, nil)
	return domain.Actor{UserID: u.ID, Kind: domain.ActorSuperAdmin, Admin: true}
}

func TestCreateTeam(t *testing.T) {
	f := newFixture(t)
	super := f.superadmin(t)

	team, err := f.teamSvc.CreateTeam(context.Background(), super, "Border Reivers", "rugby")
	require.NoError(t, err)
	assert.NotEmpty(t, team.ID)
	assert.Equal(t, "Border Reivers", team.Name)

	teams, err := f.teamSvc.ListTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
}

func TestCreateTeamRequiresSuperadmin(t *testing.T) {
	f := newFixture(t)
	teamID := f.seedTeam(t, "Existing")
	teamAdmin := domain.Actor{
		UserID: f.seedUser(t, nil, true, &teamID).ID,
		Kind:   domain.ActorTeamAdmin, TeamID: teamID, Admin: true,
	}

	var forbidden *domain.ForbiddenError
	_, err := f.teamSvc.CreateTeam(context.Background(), teamAdmin, "Another", "rugby")
	require.ErrorAs(t, err, &forbidden)
}

func TestCreateTeamDuplicateName(t *testing.T) {
	f := newFixture(t)
	super := f.superadmin(t)

	_, err := f.teamSvc.CreateTeam(context.Background(), super, "Caledonia", "rugby")
	require.NoError(t, err)

	var dup *domain.DuplicateError
	_, err = f.teamSvc.CreateTeam(context.Background(), super, "Caledonia", "football")
	require.ErrorAs(t, err, &dup)
}

func TestCreateTeamEmptyName(t *testing.T) {
	f := newFixture(t)
	super := f.superadmin(t)

	var validation *domain.ValidationError
	_, err := f.teamSvc.CreateTeam(context.Background(), super, "  ", "rugby")
	require.ErrorAs(t, err, &validation)
}

func TestDeleteTeamWithMembers(t *testing.T) {
	f := newFixture(t)
	super := f.superadmin(t)
	teamID := f.seedTeam(t, "Populated")
	f.seedUser(t, rolePtr(domain.RoleCoach), false, &teamID)

	var conflict *domain.ConflictError
	require.ErrorAs(t, f.teamSvc.DeleteTeam(context.Background(), super, teamID), &conflict)

	emptyID := f.seedTeam(t, "Empty")
	require.NoError(t, f.teamSvc.DeleteTeam(context.Background(), super, emptyID))
}

func TestReassignRoleCreatesSubtype(t *testing.T) {
	f := newFixture(t)
	teamID := f.seedTeam(t, "Switchers")
	teamAdmin := domain.Actor{
		UserID: f.seedUser(t, nil, true, &teamID).ID,
		Kind:   domain.ActorTeamAdmin, TeamID: teamID, Admin: true,
	}
	target := f.seedUser(t, rolePtr(domain.RoleCoach), false, &teamID)

	require.NoError(t, f.teamSvc.ReassignRole(context.Background(), teamAdmin, target.ID, domain.RoleClinician))

	updated, err := f.users.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Role)
	assert.Equal(t, domain.RoleClinician, *updated.Role)

	clinician, err := f.users.GetClinician(context.Background(), target.ID)
	require.NoError(t, err)
	require.NotNil(t, clinician)
}

func TestReassignRoleScopedToOwnTeam(t *testing.T) {
	f := newFixture(t)
	teamID := f.seedTeam(t, "Home")
	otherID := f.seedTeam(t, "Away")
	teamAdmin := domain.Actor{
		UserID: f.seedUser(t, nil, true, &teamID).ID,
		Kind:   domain.ActorTeamAdmin, TeamID: teamID, Admin: true,
	}
	outsider := f.seedUser(t, rolePtr(domain.RoleCoach), false, &otherID)

	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, f.teamSvc.ReassignRole(context.Background(), teamAdmin, outsider.ID, domain.RoleClinician), &forbidden)
}

func TestToggleAdmin(t *testing.T) {
	f := newFixture(t)
	super := f.superadmin(t)
	teamID := f.seedTeam(t, "Promotable")
	target := f.seedUser(t, rolePtr(domain.RoleCoach), false, &teamID)

	require.NoError(t, f.teamSvc.ToggleAdmin(context.Background(), super, target.ID, true))

	updated, err := f.users.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	var forbidden *domain.ForbiddenError
	nonAdmin := domain.Actor{UserID: target.ID, Kind: domain.ActorCoach, TeamID: teamID}
	require.ErrorAs(t, f.teamSvc.ToggleAdmin(context.Background(), nonAdmin, target.ID, false), &forbidden)
}

func TestRemoveFromTeam(t *testing.T) {
	f := newFixture(t)
	teamID := f.seedTeam(t, "Shrinking")
	teamAdmin := domain.Actor{
		UserID: f.seedUser(t, nil, true, &teamID).ID,
		Kind:   domain.ActorTeamAdmin, TeamID: teamID, Admin: true,
	}
	target := f.seedUser(t, rolePtr(domain.RoleAthlete), false, &teamID)

	require.NoError(t, f.teamSvc.RemoveFromTeam(context.Background(), teamAdmin, target.ID))

	updated, err := f.users.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.TeamID)
}

func TestTeamOverviewListsAdmins(t *testing.T) {
	f := newFixture(t)
	super := f.superadmin(t)
	teamID := f.seedTeam(t, "Overseen")
	f.seedUser(t, nil, true, &teamID)

	rows, err := f.teamSvc.Overview(context.Background(), super)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Overseen", rows[0].Team.Name)
	require.NotNil(t, rows[0].AdminName)
}
