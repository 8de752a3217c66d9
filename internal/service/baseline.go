package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scotia-sense/internal/auth"
	"scotia-sense/internal/constants"
	"scotia-sense/internal/domain"
	"scotia-sense/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type BaselineService struct {
	db        *sql.DB
	baselines *repository.BaselineRepository
	users     *repository.UserRepository
	logger    zerolog.Logger
}

func NewBaselineService(sqlDB *sql.DB, baselines *repository.BaselineRepository, users *repository.UserRepository, logger zerolog.Logger) *BaselineService {
	return &BaselineService{db: sqlDB, baselines: baselines, users: users, logger: logger}
}

type CreateBaselineInput struct {
	AthleteUserID          string
	CognitiveFunctionScore *float64
	ChemicalMarkerScore    *float64
}

// CreateBaseline records the athlete's one-time seasonal baseline. A zero
// score is a valid measurement; only an absent field is rejected. The
// existence check and insert share one transaction, and the unique index on
// (athlete, season) backs it against concurrent first submissions.
func (s *BaselineService) CreateBaseline(ctx context.Context, actor domain.Actor, in CreateBaselineInput) (*domain.BaselineScore, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if in.CognitiveFunctionScore == nil || in.ChemicalMarkerScore == nil {
		return nil, domain.NewValidationError("cognitive_function_score and chemical_marker_score are required")
	}

	athlete, err := s.users.GetAthlete(ctx, in.AthleteUserID)
	if err != nil {
		return nil, err
	}
	if athlete == nil {
		return nil, domain.NewNotFoundError("athlete %s not found", in.AthleteUserID)
	}

	if err := auth.CanSubmitScores(actor, *athlete); err != nil {
		return nil, err
	}

	now := time.Now()
	season := domain.ResolveSeason(now)

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate baseline id: %w", err)
	}

	baseline := &domain.BaselineScore{
		ID:                     id,
		AthleteUserID:          in.AthleteUserID,
		Season:                 season,
		CognitiveFunctionScore: *in.CognitiveFunctionScore,
		ChemicalMarkerScore:    *in.ChemicalMarkerScore,
		CreatedAt:              now,
	}
	if actor.Kind == domain.ActorClinician {
		clinicianID := actor.UserID
		baseline.ClinicianUserID = &clinicianID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	btx := s.baselines.WithTx(tx)

	exists, err := btx.Exists(ctx, in.AthleteUserID, season)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewDuplicateError("baseline already exists for athlete %s in season %s", in.AthleteUserID, season)
	}

	if err := btx.Create(ctx, baseline); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().
		Str("athlete_user_id", in.AthleteUserID).
		Str("season", season).
		Msg("baseline recorded")

	return baseline, nil
}

// HasBaseline reports whether the athlete has a baseline for the season.
func (s *BaselineService) HasBaseline(ctx context.Context, actor domain.Actor, athleteID, season string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.users.GetAthlete(ctx, athleteID)
	if err != nil {
		return false, err
	}
	if athlete == nil {
		return false, domain.NewNotFoundError("athlete %s not found", athleteID)
	}

	if err := auth.CanReadClinical(actor, *athlete); err != nil {
		return false, err
	}

	return s.baselines.Exists(ctx, athleteID, season)
}
