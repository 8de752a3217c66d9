package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rolePtr(r Role) *Role    { return &r }
func strPtr(s string) *string { return &s }

func TestResolveActor(t *testing.T) {
	tests := []struct {
		name      string
		user      User
		wantKind  ActorKind
		wantTeam  string
		wantAdmin bool
	}{
		{
			name:     "athlete",
			user:     User{ID: "u1", Role: rolePtr(RoleAthlete), TeamID: strPtr("t1")},
			wantKind: ActorAthlete,
			wantTeam: "t1",
		},
		{
			name:     "clinician without team",
			user:     User{ID: "u2", Role: rolePtr(RoleClinician)},
			wantKind: ActorClinician,
		},
		{
			name:      "superadmin",
			user:      User{ID: "u3", IsAdmin: true},
			wantKind:  ActorSuperAdmin,
			wantAdmin: true,
		},
		{
			name:      "team admin",
			user:      User{ID: "u4", IsAdmin: true, TeamID: strPtr("t1")},
			wantKind:  ActorTeamAdmin,
			wantTeam:  "t1",
			wantAdmin: true,
		},
		{
			name:      "coach carrying the admin flag",
			user:      User{ID: "u5", Role: rolePtr(RoleCoach), IsAdmin: true, TeamID: strPtr("t1")},
			wantKind:  ActorCoach,
			wantTeam:  "t1",
			wantAdmin: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := ResolveActor(tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.user.ID, actor.UserID)
			assert.Equal(t, tt.wantKind, actor.Kind)
			assert.Equal(t, tt.wantTeam, actor.TeamID)
			assert.Equal(t, tt.wantAdmin, actor.Admin)
		})
	}
}

func TestResolveActorRejectsRolelessNonAdmin(t *testing.T) {
	_, err := ResolveActor(User{ID: "u1"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestManagesRoster(t *testing.T) {
	assert.True(t, Actor{Kind: ActorTeamAdmin, TeamID: "t1"}.ManagesRoster())
	assert.True(t, Actor{Kind: ActorCoach, TeamID: "t1", Admin: true}.ManagesRoster())
	assert.False(t, Actor{Kind: ActorSuperAdmin, Admin: true}.ManagesRoster())
	assert.False(t, Actor{Kind: ActorCoach, TeamID: "t1"}.ManagesRoster())
}
