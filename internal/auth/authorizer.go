// Package auth holds the capability checks scoping who may act on whose
// records. Checks are pure functions over the resolved Actor; a failure is
// always a ForbiddenError, distinct from dangling-reference NotFoundErrors
// raised by the callers that looked the records up.
package auth

import (
	"scotia-sense/internal/domain"
)

// CanReadClinical reports whether the actor may read an athlete's clinical
// records: the athlete themselves, their assigned clinician, or their
// assigned coach (read-only dashboard). Admin tiers never see clinical data.
func CanReadClinical(actor domain.Actor, athlete domain.Athlete) error {
	switch actor.Kind {
	case domain.ActorAthlete:
		if actor.UserID == athlete.UserID {
			return nil
		}
	case domain.ActorClinician:
		if athlete.ClinicianUserID != nil && *athlete.ClinicianUserID == actor.UserID {
			return nil
		}
	case domain.ActorCoach:
		if athlete.CoachUserID != nil && *athlete.CoachUserID == actor.UserID {
			return nil
		}
	}
	return domain.NewForbiddenError("not permitted to read records for athlete %s", athlete.UserID)
}

// CanSubmitScores reports whether the actor may write baseline or test
// scores for the athlete: the assigned clinician, or the athlete themselves
// on the self-submission path. Coaches are read-only.
func CanSubmitScores(actor domain.Actor, athlete domain.Athlete) error {
	switch actor.Kind {
	case domain.ActorAthlete:
		if actor.UserID == athlete.UserID {
			return nil
		}
	case domain.ActorClinician:
		if athlete.ClinicianUserID != nil && *athlete.ClinicianUserID == actor.UserID {
			return nil
		}
	}
	return domain.NewForbiddenError("not permitted to submit scores for athlete %s", athlete.UserID)
}

// CanManageInjury reports whether the actor may log injuries, clear them, or
// set recovery stages. Only the assigned clinician qualifies.
func CanManageInjury(actor domain.Actor, athlete domain.Athlete) error {
	if actor.Kind == domain.ActorClinician &&
		athlete.ClinicianUserID != nil && *athlete.ClinicianUserID == actor.UserID {
		return nil
	}
	return domain.NewForbiddenError("not permitted to manage injury records for athlete %s", athlete.UserID)
}

// CanInvite reports whether the actor may issue an invite for the given
// role (nil meaning team admin). Admin tiers invite any role; clinicians
// may onboard their own athletes.
func CanInvite(actor domain.Actor, role *domain.Role) error {
	if actor.Kind == domain.ActorSuperAdmin || actor.ManagesRoster() {
		return nil
	}
	if actor.Kind == domain.ActorClinician && role != nil && *role == domain.RoleAthlete {
		return nil
	}
	return domain.NewForbiddenError("not permitted to issue invites")
}

// CanAdministerTeams gates global team CRUD, the global user listing, and
// admin-flag toggling.
func CanAdministerTeams(actor domain.Actor) error {
	if actor.Kind == domain.ActorSuperAdmin {
		return nil
	}
	return domain.NewForbiddenError("not permitted to administer teams")
}

// CanManageRoster reports whether the actor may reassign or remove the
// target user within a team. Team admins are scoped to their own team and
// never reach outside it.
func CanManageRoster(actor domain.Actor, target domain.User) error {
	if !actor.ManagesRoster() {
		return domain.NewForbiddenError("not permitted to manage team rosters")
	}
	if target.TeamID == nil || *target.TeamID != actor.TeamID {
		return domain.NewForbiddenError("user %s is not on your team", target.ID)
	}
	return nil
}
