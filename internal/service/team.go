package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"scotia-sense/internal/auth"
	"scotia-sense/internal/constants"
	"scotia-sense/internal/domain"
	"scotia-sense/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type TeamService struct {
	db     *sql.DB
	teams  *repository.TeamRepository
	users  *repository.UserRepository
	logger zerolog.Logger
}

func NewTeamService(sqlDB *sql.DB, teams *repository.TeamRepository, users *repository.UserRepository, logger zerolog.Logger) *TeamService {
	return &TeamService{db: sqlDB, teams: teams, users: users, logger: logger}
}

func (s *TeamService) CreateTeam(ctx context.Context, actor domain.Actor, name, sport string) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := auth.CanAdministerTeams(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("team name is required")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate team id: %w", err)
	}

	team := &domain.Team{ID: id, Name: name, Sport: sport, CreatedAt: time.Now()}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info().Str("team_id", team.ID).Str("name", name).Msg("team created")
	return team, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, actor domain.Actor, id, name, sport string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := auth.CanAdministerTeams(actor); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("team name is required")
	}

	return s.teams.Update(ctx, &domain.Team{ID: id, Name: name, Sport: sport})
}

// DeleteTeam removes a team only when no users reference it. The membership
// check and the delete share a transaction so a concurrent registration
// cannot slip a member into a vanishing team.
func (s *TeamService) DeleteTeam(ctx context.Context, actor domain.Actor, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := auth.CanAdministerTeams(actor); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ttx := s.teams.WithTx(tx)

	members, err := ttx.CountMembers(ctx, id)
	if err != nil {
		return err
	}
	if members > 0 {
		return domain.NewConflictError("team %s still has %d members", id, members)
	}

	if err := ttx.Delete(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Str("team_id", id).Msg("team deleted")
	return nil
}

// Overview is the superadmin listing of teams with their admins.
func (s *TeamService) Overview(ctx context.Context, actor domain.Actor) ([]repository.TeamWithAdmin, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := auth.CanAdministerTeams(actor); err != nil {
		return nil, err
	}
	return s.teams.ListWithAdmins(ctx)
}

// ListTeams backs the public registration-time team picker.
func (s *TeamService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.teams.List(ctx)
}

func (s *TeamService) ListUsers(ctx context.Context, actor domain.Actor) ([]repository.UserWithTeam, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := auth.CanAdministerTeams(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *TeamService) ToggleAdmin(ctx context.Context, actor domain.Actor, userID string, isAdmin bool) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := auth.CanAdministerTeams(actor); err != nil {
		return err
	}
	return s.users.SetAdmin(ctx, userID, isAdmin)
}

// ReassignRole lets a team admin change a same-team member's role. The
// matching subtype row is created when the user has never held the role.
func (s *TeamService) ReassignRole(ctx context.Context, actor domain.Actor, userID string, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !role.Valid() {
		return domain.NewValidationError("invalid role %q", role)
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.NewNotFoundError("user %s not found", userID)
	}

	if err := auth.CanManageRoster(actor, *target); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	utx := s.users.WithTx(tx)
	if err := utx.SetRole(ctx, userID, &role); err != nil {
		return err
	}

	switch role {
	case domain.RoleAthlete:
		existing, err := utx.GetAthlete(ctx, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			err = utx.CreateAthlete(ctx, &domain.Athlete{UserID: userID})
		}
		if err != nil {
			return err
		}
	case domain.RoleClinician:
		existing, err := utx.GetClinician(ctx, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			err = utx.CreateClinician(ctx, &domain.Clinician{UserID: userID})
		}
		if err != nil {
			return err
		}
	case domain.RoleCoach:
		existing, err := utx.GetCoach(ctx, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			err = utx.CreateCoach(ctx, &domain.Coach{UserID: userID})
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("role", string(role)).Msg("role reassigned")
	return nil
}

func (s *TeamService) RemoveFromTeam(ctx context.Context, actor domain.Actor, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.NewNotFoundError("user %s not found", userID)
	}

	if err := auth.CanManageRoster(actor, *target); err != nil {
		return err
	}

	if err := s.users.RemoveFromTeam(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Msg("user removed from team")
	return nil
}
