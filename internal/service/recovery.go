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
)

type RecoveryService struct {
	db       *sql.DB
	injuries *repository.InjuryRepository
	stages   *repository.RecoveryRepository
	users    *repository.UserRepository
	logger   zerolog.Logger
}

func NewRecoveryService(sqlDB *sql.DB, injuries *repository.InjuryRepository, stages *repository.RecoveryRepository, users *repository.UserRepository, logger zerolog.Logger) *RecoveryService {
	return &RecoveryService{db: sqlDB, injuries: injuries, stages: stages, users: users, logger: logger}
}

func (s *RecoveryService) loadAthlete(ctx context.Context, athleteID string) (*domain.Athlete, error) {
	athlete, err := s.users.GetAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if athlete == nil {
		return nil, domain.NewNotFoundError("athlete %s not found", athleteID)
	}
	return athlete, nil
}

// LogInjury appends an injury event outside the score-submission pipeline.
// A reason is always required on this path; the rehab waiver only applies
// to monitoring submissions.
func (s *RecoveryService) LogInjury(ctx context.Context, actor domain.Actor, athleteID, reason string) (*domain.InjuryLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.loadAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanManageInjury(actor, *athlete); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("an injury reason is required")
	}

	entry := &domain.InjuryLogEntry{
		AthleteUserID:   athleteID,
		ClinicianUserID: actor.UserID,
		IsInjured:       true,
		Reason:          reason,
		LoggedAt:        time.Now(),
	}
	if err := s.injuries.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("athlete_user_id", athleteID).Str("reason", reason).Msg("injury logged")
	return entry, nil
}

// ClearInjury appends a clearance event and resets the recovery stage to
// null. Both appends run in one transaction so a reader can never observe
// "healthy but staged" or the reverse.
func (s *RecoveryService) ClearInjury(ctx context.Context, actor domain.Actor, athleteID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.loadAthlete(ctx, athleteID)
	if err != nil {
		return err
	}
	if err := auth.CanManageInjury(actor, *athlete); err != nil {
		return err
	}

	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	clearance := domain.InjuryLogEntry{
		AthleteUserID:   athleteID,
		ClinicianUserID: actor.UserID,
		IsInjured:       false,
		LoggedAt:        now,
	}
	if err := s.injuries.WithTx(tx).Append(ctx, &clearance); err != nil {
		return err
	}

	reset := domain.RecoveryStageEntry{
		AthleteUserID:   athleteID,
		ClinicianUserID: actor.UserID,
		Stage:           nil,
		UpdatedAt:       now,
	}
	if err := s.stages.WithTx(tx).Append(ctx, &reset); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Str("athlete_user_id", athleteID).Msg("injury cleared, recovery stage reset")
	return nil
}

// SetStage assigns a return-to-play stage. Stages form an ordered six-step
// protocol but progression is deliberately not enforced as monotonic;
// clinical judgment may move an athlete backwards or skip ahead.
func (s *RecoveryService) SetStage(ctx context.Context, actor domain.Actor, athleteID string, stage int) (*domain.RecoveryStageEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.loadAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanManageInjury(actor, *athlete); err != nil {
		return nil, err
	}

	if stage < domain.RecoveryStageMin || stage > domain.RecoveryStageMax {
		return nil, domain.NewValidationError("recovery stage must be between %d and %d", domain.RecoveryStageMin, domain.RecoveryStageMax)
	}

	// The injured-state check and the stage append share one transaction so
	// a concurrent clearance cannot land between them and leave the athlete
	// healthy but staged.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	latest, err := s.injuries.WithTx(tx).Latest(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if latest == nil || !latest.IsInjured {
		return nil, domain.NewValidationError("athlete %s is not currently injured", athleteID)
	}

	entry := &domain.RecoveryStageEntry{
		AthleteUserID:   athleteID,
		ClinicianUserID: actor.UserID,
		Stage:           &stage,
		UpdatedAt:       time.Now(),
	}
	if err := s.stages.WithTx(tx).Append(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Str("athlete_user_id", athleteID).Int("stage", stage).Msg("recovery stage set")
	return entry, nil
}

// CurrentStatus derives the latest-wins injury view.
func (s *RecoveryService) CurrentStatus(ctx context.Context, actor domain.Actor, athleteID string) (domain.InjuryStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.loadAthlete(ctx, athleteID)
	if err != nil {
		return domain.InjuryStatus{}, err
	}
	if err := auth.CanReadClinical(actor, *athlete); err != nil {
		return domain.InjuryStatus{}, err
	}

	latest, err := s.injuries.Latest(ctx, athleteID)
	if err != nil {
		return domain.InjuryStatus{}, err
	}
	return statusFromEntry(latest), nil
}

// InjuryHistory returns the athlete's full injury log, oldest first.
func (s *RecoveryService) InjuryHistory(ctx context.Context, actor domain.Actor, athleteID string) ([]domain.InjuryLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.loadAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanReadClinical(actor, *athlete); err != nil {
		return nil, err
	}

	return s.injuries.ListByAthlete(ctx, athleteID)
}

// CurrentStage derives the latest-wins recovery stage, nil when the athlete
// has never been staged or was cleared.
func (s *RecoveryService) CurrentStage(ctx context.Context, actor domain.Actor, athleteID string) (*int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	athlete, err := s.loadAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if err := auth.CanReadClinical(actor, *athlete); err != nil {
		return nil, err
	}

	latest, err := s.stages.Latest(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}
	return latest.Stage, nil
}

func statusFromEntry(e *domain.InjuryLogEntry) domain.InjuryStatus {
	if e == nil {
		return domain.InjuryStatus{IsInjured: false}
	}
	status := domain.InjuryStatus{IsInjured: e.IsInjured}
	if e.IsInjured {
		since := e.LoggedAt
		status.Since = &since
		status.Reason = e.Reason
	}
	return status
}
