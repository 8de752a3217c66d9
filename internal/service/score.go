package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"scotia-sense/internal/auth"
	"scotia-sense/internal/constants"
	"scotia-sense/internal/domain"
	"scotia-sense/internal/repository"
	"scotia-sense/internal/storage"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type ScoreService struct {
	db        *sql.DB
	scores    *repository.TestScoreRepository
	baselines *repository.BaselineRepository
	injuries  *repository.InjuryRepository
	notes     *repository.NoteRepository
	users     *repository.UserRepository
	files     storage.FileStore
	logger    zerolog.Logger
}

func NewScoreService(
	sqlDB *sql.DB,
	scores *repository.TestScoreRepository,
	baselines *repository.BaselineRepository,
	injuries *repository.InjuryRepository,
	notes *repository.NoteRepository,
	users *repository.UserRepository,
	files storage.FileStore,
	logger zerolog.Logger,
) *ScoreService {
	return &ScoreService{
		db:        sqlDB,
		scores:    scores,
		baselines: baselines,
		injuries:  injuries,
		notes:     notes,
		users:     users,
		files:     files,
		logger:    logger,
	}
}

type AttachmentUpload struct {
	FileName string
	Content  io.Reader
}

type SubmitTestScoreInput struct {
	AthleteUserID          string
	ScoreType              domain.ScoreType
	CognitiveFunctionScore *float64
	ChemicalMarkerScore    *float64
	Injured                bool
	InjuryReason           string
	Note                   string
	NoteVisibility         domain.NoteVisibility
	Attachments            []AttachmentUpload
}

type SubmitTestScoreResult struct {
	TestScore domain.TestScore
	Deviation *domain.Deviation
}

// SubmitTestScore runs the full submission pipeline: authorize, validate,
// season-tag, persist the score plus optional note/attachments, and append
// an injury log entry when the submission flags one. All row writes share a
// single transaction.
func (s *ScoreService) SubmitTestScore(ctx context.Context, actor domain.Actor, in SubmitTestScoreInput) (*SubmitTestScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !in.ScoreType.Valid() {
		return nil, domain.NewValidationError("invalid score_type %q", in.ScoreType)
	}
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

	// Flagging an injury and attaching notes are clinician acts even though
	// athletes may self-submit plain scores.
	if (in.Injured || in.Note != "") && actor.Kind != domain.ActorClinician {
		return nil, domain.NewForbiddenError("only the assigned clinician may flag injuries or attach notes")
	}

	now := time.Now()
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate test score id: %w", err)
	}

	score := domain.TestScore{
		ID:                     id,
		AthleteUserID:          in.AthleteUserID,
		ScoreType:              in.ScoreType,
		CognitiveFunctionScore: *in.CognitiveFunctionScore,
		ChemicalMarkerScore:    *in.ChemicalMarkerScore,
		Season:                 domain.ResolveSeason(now),
		CreatedAt:              now,
	}
	if actor.Kind == domain.ActorClinician {
		clinicianID := actor.UserID
		score.ClinicianUserID = &clinicianID
	}

	// File bytes go to external storage first; only the refs join the
	// transaction below. If the transaction never commits, the files are
	// removed again so storage carries no refs the database disowned.
	refs := make([]domain.Attachment, 0, len(in.Attachments))
	for _, upload := range in.Attachments {
		ref, err := s.files.Save(ctx, score.ID, upload.FileName, upload.Content)
		if err != nil {
			s.removeAttachmentFiles(ctx, refs)
			return nil, fmt.Errorf("failed to store attachment %s: %w", upload.FileName, err)
		}
		refs = append(refs, domain.Attachment{
			TestScoreID: score.ID,
			FileName:    upload.FileName,
			StorageRef:  ref,
			CreatedAt:   now,
		})
	}

	if err := s.persistSubmission(ctx, actor, in, &score, refs, now); err != nil {
		s.removeAttachmentFiles(ctx, refs)
		return nil, err
	}

	result := &SubmitTestScoreResult{TestScore: score}

	baseline, err := s.baselines.GetByAthleteSeason(ctx, in.AthleteUserID, score.Season)
	if err != nil {
		return nil, err
	}
	if baseline != nil {
		deviation := domain.ComputeDeviation(score, *baseline)
		result.Deviation = &deviation
	}

	s.logger.Info().
		Str("athlete_user_id", in.AthleteUserID).
		Str("score_type", string(in.ScoreType)).
		Str("season", score.Season).
		Bool("injured", in.Injured).
		Msg("test score recorded")

	return result, nil
}

// persistSubmission writes the score and its companion rows in one
// transaction. The injured-state read shares that transaction with the
// checks and writes that depend on it, so a clearance landing concurrently
// cannot produce a rehab score or injury flag against a healthy athlete.
func (s *ScoreService) persistSubmission(ctx context.Context, actor domain.Actor, in SubmitTestScoreInput, score *domain.TestScore, refs []domain.Attachment, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	latest, err := s.injuries.WithTx(tx).Latest(ctx, in.AthleteUserID)
	if err != nil {
		return err
	}
	currentlyInjured := latest != nil && latest.IsInjured

	// Rehab submissions represent ongoing monitoring of an open episode.
	if in.ScoreType == domain.ScoreTypeRehab && !currentlyInjured {
		return domain.NewValidationError("rehab scores are only valid during an active injury episode")
	}

	// Reason is mandatory for a new injury, waived for rehab monitoring.
	if in.Injured && strings.TrimSpace(in.InjuryReason) == "" && in.ScoreType != domain.ScoreTypeRehab {
		return domain.NewValidationError("an injury reason is required")
	}

	stx := s.scores.WithTx(tx)

	if err := stx.Create(ctx, score); err != nil {
		return err
	}

	for i := range refs {
		if err := stx.CreateAttachment(ctx, &refs[i]); err != nil {
			return err
		}
	}

	if in.Note != "" {
		visibility := in.NoteVisibility
		if visibility == "" {
			visibility = domain.NoteVisibilityShared
		}
		note := domain.ClinicianNote{
			TestScoreID:     score.ID,
			AthleteUserID:   in.AthleteUserID,
			ClinicianUserID: actor.UserID,
			Note:            in.Note,
			Visibility:      visibility,
			CreatedAt:       now,
		}
		if err := s.notes.WithTx(tx).Create(ctx, &note); err != nil {
			return err
		}
	}

	if in.Injured {
		entry := domain.InjuryLogEntry{
			AthleteUserID:   in.AthleteUserID,
			ClinicianUserID: actor.UserID,
			IsInjured:       true,
			Reason:          strings.TrimSpace(in.InjuryReason),
			LoggedAt:        now,
		}
		if err := s.injuries.WithTx(tx).Append(ctx, &entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// removeAttachmentFiles deletes stored file bytes whose refs never reached
// the database. Best effort; a leftover file is logged, not fatal.
func (s *ScoreService) removeAttachmentFiles(ctx context.Context, refs []domain.Attachment) {
	for _, ref := range refs {
		if err := s.files.Remove(ctx, ref.StorageRef); err != nil {
			s.logger.Warn().Err(err).Str("ref", ref.StorageRef).Msg("failed to remove orphaned attachment")
		}
	}
}

// DeviationHistory returns the athlete's deviation-annotated submissions,
// ascending by created_at. Scores with no season-matched baseline are
// excluded rather than zero-filled, and nothing is cached between calls.
func (s *ScoreService) DeviationHistory(ctx context.Context, actor domain.Actor, athleteID string) ([]domain.DeviationPoint, error) {
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

	scores, err := s.scores.ListByAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	baselines, err := s.baselines.ListByAthlete(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	bySeason := make(map[string]domain.BaselineScore, len(baselines))
	for _, b := range baselines {
		bySeason[b.Season] = b
	}

	var history []domain.DeviationPoint
	for _, score := range scores {
		baseline, ok := bySeason[score.Season]
		if !ok {
			continue
		}
		history = append(history, domain.DeviationPoint{
			TestScore: score,
			Deviation: domain.ComputeDeviation(score, baseline),
		})
	}

	return history, nil
}

// Notes lists a test score's clinician notes. The assigned clinician sees
// private notes too; everyone else with read access sees shared notes only.
func (s *ScoreService) Notes(ctx context.Context, actor domain.Actor, athleteID, testScoreID string) ([]domain.ClinicianNote, error) {
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

	includePrivate := actor.Kind == domain.ActorClinician &&
		athlete.ClinicianUserID != nil && *athlete.ClinicianUserID == actor.UserID
	return s.notes.ListByTestScore(ctx, testScoreID, includePrivate)
}

// Attachments lists the stored references for a test score.
func (s *ScoreService) Attachments(ctx context.Context, actor domain.Actor, athleteID, testScoreID string) ([]domain.Attachment, error) {
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

	return s.scores.ListAttachments(ctx, testScoreID)
}
