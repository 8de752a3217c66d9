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

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

type UserService struct {
	db        *sql.DB
	users     *repository.UserRepository
	injuries  *repository.InjuryRepository
	stages    *repository.RecoveryRepository
	scores    *repository.TestScoreRepository
	baselines *repository.BaselineRepository
	notes     *repository.NoteRepository
	logger    zerolog.Logger
}

func NewUserService(
	sqlDB *sql.DB,
	users *repository.UserRepository,
	injuries *repository.InjuryRepository,
	stages *repository.RecoveryRepository,
	scores *repository.TestScoreRepository,
	baselines *repository.BaselineRepository,
	notes *repository.NoteRepository,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		db:        sqlDB,
		users:     users,
		injuries:  injuries,
		stages:    stages,
		scores:    scores,
		baselines: baselines,
		notes:     notes,
		logger:    logger,
	}
}

// ActorByUserID resolves the identity tuple supplied by the session layer
// into a classified Actor. Satisfies middleware.ActorSource.
func (s *UserService) ActorByUserID(ctx context.Context, userID string) (domain.Actor, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	if user == nil {
		return domain.Actor{}, domain.NewNotFoundError("user %s not found", userID)
	}
	return domain.ResolveActor(*user)
}

type Profile struct {
	User      domain.User
	Clinician *domain.Clinician
	Coach     *domain.Coach
	Athlete   *domain.Athlete
}

func (s *UserService) Profile(ctx context.Context, actor domain.Actor) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user %s not found", actor.UserID)
	}

	profile := &Profile{User: *user}
	if user.Role == nil {
		return profile, nil
	}

	switch *user.Role {
	case domain.RoleClinician:
		profile.Clinician, err = s.users.GetClinician(ctx, user.ID)
	case domain.RoleCoach:
		profile.Coach, err = s.users.GetCoach(ctx, user.ID)
	case domain.RoleAthlete:
		profile.Athlete, err = s.users.GetAthlete(ctx, user.ID)
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

type UpdateProfileInput struct {
	Email           *string
	FirstName       *string
	LastName        *string
	Password        *string
	CurrentPassword string

	Specialisation  *string
	ContactInfo     *string
	Experience      *string
	Sport           *string
	Gender          *string
	Position        *string
	DateOfBirth     *time.Time
	ClinicianUserID *string
	CoachUserID     *string
}

// UpdateProfile applies self-service changes. Changing the password needs
// the current one; athlete clinician/coach reassignments require the target
// to actually hold that role.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, in UpdateProfileInput) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NewNotFoundError("user %s not found", actor.UserID)
	}

	if in.Password != nil {
		if in.CurrentPassword == "" {
			return domain.NewValidationError("current password is required to change the password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
			return domain.NewValidationError("current password is incorrect")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	utx := s.users.WithTx(tx)

	if in.Email != nil && *in.Email != user.Email {
		if strings.TrimSpace(*in.Email) == "" {
			return domain.NewValidationError("email must not be empty")
		}
		if err := utx.UpdateEmail(ctx, user.ID, *in.Email); err != nil {
			return err
		}
	}

	if in.FirstName != nil || in.LastName != nil {
		first, last := user.FirstName, user.LastName
		if in.FirstName != nil {
			first = *in.FirstName
		}
		if in.LastName != nil {
			last = *in.LastName
		}
		if err := utx.UpdateName(ctx, user.ID, first, last); err != nil {
			return err
		}
	}

	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), constants.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := utx.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
			return err
		}
	}

	if user.Role != nil {
		switch *user.Role {
		case domain.RoleClinician:
			if in.Specialisation != nil || in.ContactInfo != nil {
				current, err := utx.GetClinician(ctx, user.ID)
				if err != nil {
					return err
				}
				if current == nil {
					current = &domain.Clinician{UserID: user.ID}
				}
				if in.Specialisation != nil {
					current.Specialisation = *in.Specialisation
				}
				if in.ContactInfo != nil {
					current.ContactInfo = *in.ContactInfo
				}
				if err := utx.UpdateClinician(ctx, current); err != nil {
					return err
				}
			}
		case domain.RoleCoach:
			if in.Experience != nil {
				if err := utx.UpdateCoach(ctx, &domain.Coach{UserID: user.ID, Experience: *in.Experience}); err != nil {
					return err
				}
			}
		case domain.RoleAthlete:
			if err := s.updateAthleteProfile(ctx, utx, user.ID, in); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("profile updated")
	return nil
}

func (s *UserService) updateAthleteProfile(ctx context.Context, utx *repository.UserRepository, userID string, in UpdateProfileInput) error {
	current, err := utx.GetAthlete(ctx, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.NewNotFoundError("athlete %s not found", userID)
	}

	if in.Sport != nil {
		current.Sport = *in.Sport
	}
	if in.Gender != nil {
		current.Gender = *in.Gender
	}
	if in.Position != nil {
		current.Position = *in.Position
	}
	if in.DateOfBirth != nil {
		current.DateOfBirth = in.DateOfBirth
	}
	if err := utx.UpdateAthlete(ctx, current); err != nil {
		return err
	}

	if in.ClinicianUserID != nil {
		clinician, err := utx.GetByID(ctx, *in.ClinicianUserID)
		if err != nil {
			return err
		}
		if clinician == nil || clinician.Role == nil || *clinician.Role != domain.RoleClinician {
			return domain.NewNotFoundError("clinician %s not found", *in.ClinicianUserID)
		}
		if err := utx.UpdateAthleteClinician(ctx, userID, *in.ClinicianUserID); err != nil {
			return err
		}
	}

	if in.CoachUserID != nil {
		coach, err := utx.GetByID(ctx, *in.CoachUserID)
		if err != nil {
			return err
		}
		if coach == nil || coach.Role == nil || *coach.Role != domain.RoleCoach {
			return domain.NewNotFoundError("coach %s not found", *in.CoachUserID)
		}
		if err := utx.UpdateAthleteCoach(ctx, userID, *in.CoachUserID); err != nil {
			return err
		}
	}

	return nil
}

// Directory lists clinicians and coaches for assignment pickers.
type Directory struct {
	Clinicians []repository.DirectoryEntry
	Coaches    []repository.DirectoryEntry
}

func (s *UserService) Directory(ctx context.Context) (*Directory, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	clinicians, err := s.users.ListDirectory(ctx, domain.RoleClinician)
	if err != nil {
		return nil, err
	}
	coaches, err := s.users.ListDirectory(ctx, domain.RoleCoach)
	if err != nil {
		return nil, err
	}
	return &Directory{Clinicians: clinicians, Coaches: coaches}, nil
}

// ClinicianAthleteRow is one row of the clinician's assigned-athlete list.
type ClinicianAthleteRow struct {
	AthleteUserID string
	FirstName     string
	LastName      string
	InjuryStatus  domain.InjuryStatus
}

func (s *UserService) ClinicianDashboard(ctx context.Context, actor domain.Actor) ([]ClinicianAthleteRow, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if actor.Kind != domain.ActorClinician {
		return nil, domain.NewForbiddenError("clinician dashboard is clinician-only")
	}

	assigned, err := s.users.ListAthletesByClinician(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	rows := make([]ClinicianAthleteRow, len(assigned))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range assigned {
		i, a := i, a
		g.Go(func() error {
			latest, err := s.injuries.Latest(gctx, a.Athlete.UserID)
			if err != nil {
				return err
			}
			rows[i] = ClinicianAthleteRow{
				AthleteUserID: a.Athlete.UserID,
				FirstName:     a.FirstName,
				LastName:      a.LastName,
				InjuryStatus:  statusFromEntry(latest),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// CoachAthleteRow aggregates the latest-wins views a coach sees per
// athlete: injury status, recovery stage, most recent combined deviation,
// and the latest shared clinician note.
type CoachAthleteRow struct {
	AthleteUserID          string
	FirstName              string
	LastName               string
	Position               string
	InjuryStatus           domain.InjuryStatus
	RecoveryStage          *int
	CombinedDeviationScore *float64
	LatestNote             *string
}

func (s *UserService) CoachDashboard(ctx context.Context, actor domain.Actor) ([]CoachAthleteRow, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if actor.Kind != domain.ActorCoach {
		return nil, domain.NewForbiddenError("coach dashboard is coach-only")
	}

	assigned, err := s.users.ListAthletesByCoach(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	rows := make([]CoachAthleteRow, len(assigned))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range assigned {
		i, a := i, a
		g.Go(func() error {
			row, err := s.coachRow(gctx, a)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *UserService) coachRow(ctx context.Context, a repository.AssignedAthlete) (CoachAthleteRow, error) {
	row := CoachAthleteRow{
		AthleteUserID: a.Athlete.UserID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Position:      a.Athlete.Position,
	}

	injury, err := s.injuries.Latest(ctx, a.Athlete.UserID)
	if err != nil {
		return row, err
	}
	row.InjuryStatus = statusFromEntry(injury)

	stage, err := s.stages.Latest(ctx, a.Athlete.UserID)
	if err != nil {
		return row, err
	}
	if stage != nil {
		row.RecoveryStage = stage.Stage
	}

	latest, err := s.scores.Latest(ctx, a.Athlete.UserID)
	if err != nil {
		return row, err
	}
	if latest != nil {
		baseline, err := s.baselines.GetByAthleteSeason(ctx, a.Athlete.UserID, latest.Season)
		if err != nil {
			return row, err
		}
		if baseline != nil {
			deviation := domain.ComputeDeviation(*latest, *baseline)
			row.CombinedDeviationScore = deviation.CombinedDeviationScore
		}
	}

	note, err := s.notes.LatestShared(ctx, a.Athlete.UserID)
	if err != nil {
		return row, err
	}
	if note != nil {
		row.LatestNote = &note.Note
	}

	return row, nil
}

// Athlete fetches the athlete subtype row for cross-service authorization.
func (s *UserService) Athlete(ctx context.Context, actor domain.Actor, athleteID string) (*domain.Athlete, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.users.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if athlete == nil {
		return nil, domain.NewNotFoundError("athlete %s not found", athleteID)
	}
	if err := auth.CanReadClinical(actor, *athlete); err != nil {
		return nil, err
	}
	return athlete, nil
}
