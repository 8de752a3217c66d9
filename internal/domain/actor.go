package domain

type ActorKind int

const (
	ActorAthlete ActorKind = iota
	ActorClinician
	ActorCoach
	ActorTeamAdmin
	ActorSuperAdmin
)

func (k ActorKind) String() string {
	switch k {
	case ActorAthlete:
		return "athlete"
	case ActorClinician:
		return "clinician"
	case ActorCoach:
		return "coach"
	case ActorTeamAdmin:
		return "team_admin"
	case ActorSuperAdmin:
		return "super_admin"
	}
	return "unknown"
}

// Actor is the closed form of the raw {role, is_admin, team_id} tuple,
// resolved once at the authorization boundary so downstream logic never
// re-derives the admin-tier distinction from nullable fields. A user may
// hold a clinical or coaching role and the admin flag at the same time;
// Admin carries that orthogonal capability for role-holding actors.
type Actor struct {
	UserID string
	Kind   ActorKind
	TeamID string // empty when the actor has no team
	Admin  bool
}

// ResolveActor classifies a user into an Actor.
func ResolveActor(u User) (Actor, error) {
	teamID := ""
	if u.TeamID != nil {
		teamID = *u.TeamID
	}

	if u.Role == nil {
		if !u.IsAdmin {
			return Actor{}, NewValidationError("user %s has neither a role nor the admin flag", u.ID)
		}
		if teamID == "" {
			return Actor{UserID: u.ID, Kind: ActorSuperAdmin, Admin: true}, nil
		}
		return Actor{UserID: u.ID, Kind: ActorTeamAdmin, TeamID: teamID, Admin: true}, nil
	}

	var kind ActorKind
	switch *u.Role {
	case RoleAthlete:
		kind = ActorAthlete
	case RoleClinician:
		kind = ActorClinician
	case RoleCoach:
		kind = ActorCoach
	default:
		return Actor{}, NewValidationError("user %s has unknown role %q", u.ID, *u.Role)
	}

	return Actor{UserID: u.ID, Kind: kind, TeamID: teamID, Admin: u.IsAdmin}, nil
}

// ManagesRoster reports whether the actor may manage a team roster. Pure
// team admins qualify, as do role-holding users carrying the admin flag
// within a team.
func (a Actor) ManagesRoster() bool {
	if a.Kind == ActorTeamAdmin {
		return true
	}
	return a.Admin && a.TeamID != ""
}
