package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type TestScoreRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewTestScoreRepository(sqlDB *sql.DB, logger zerolog.Logger) *TestScoreRepository {
	return &TestScoreRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

func (r *TestScoreRepository) WithTx(tx *sql.Tx) *TestScoreRepository {
	return &TestScoreRepository{db: r.db, dbtx: tx, logger: r.logger}
}

func (r *TestScoreRepository) Create(ctx context.Context, s *domain.TestScore) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO test_scores
		   (id, athlete_user_id, clinician_user_id, score_type, cognitive_function_score, chemical_marker_score, season, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AthleteUserID, nullStr(s.ClinicianUserID), string(s.ScoreType),
		s.CognitiveFunctionScore, s.ChemicalMarkerScore, s.Season, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert test score: %w", err)
	}
	return nil
}

// ListByAthlete returns all submissions ascending by created_at, the order
// the deviation history is rendered in.
func (r *TestScoreRepository) ListByAthlete(ctx context.Context, athleteID string) ([]domain.TestScore, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT id, athlete_user_id, clinician_user_id, score_type, cognitive_function_score, chemical_marker_score, season, created_at
		 FROM test_scores
		 WHERE athlete_user_id = ?
		 ORDER BY created_at, id`,
		athleteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list test scores: %w", err)
	}
	defer rows.Close()

	var result []domain.TestScore
	for rows.Next() {
		s, err := scanTestScore(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Latest returns the most recent submission, or nil when none exists.
func (r *TestScoreRepository) Latest(ctx context.Context, athleteID string) (*domain.TestScore, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT id, athlete_user_id, clinician_user_id, score_type, cognitive_function_score, chemical_marker_score, season, created_at
		 FROM test_scores
		 WHERE athlete_user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		athleteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest test score: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanTestScore(rows)
	if err != nil {
		return nil, err
	}
	return &s, rows.Err()
}

func scanTestScore(rows *sql.Rows) (domain.TestScore, error) {
	var s domain.TestScore
	var clinicianID sql.NullString
	var scoreType string
	if err := rows.Scan(&s.ID, &s.AthleteUserID, &clinicianID, &scoreType, &s.CognitiveFunctionScore, &s.ChemicalMarkerScore, &s.Season, &s.CreatedAt); err != nil {
		return s, fmt.Errorf("failed to scan test score: %w", err)
	}
	s.ClinicianUserID = strPtr(clinicianID)
	s.ScoreType = domain.ScoreType(scoreType)
	return s, nil
}

func (r *TestScoreRepository) CreateAttachment(ctx context.Context, a *domain.Attachment) error {
	res, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO attachments (test_score_id, file_name, storage_ref, created_at)
		 VALUES (?, ?, ?, ?)`,
		a.TestScoreID, a.FileName, a.StorageRef, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get attachment id: %w", err)
	}
	return nil
}

func (r *TestScoreRepository) ListAttachments(ctx context.Context, testScoreID string) ([]domain.Attachment, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT id, test_score_id, file_name, storage_ref, created_at
		 FROM attachments
		 WHERE test_score_id = ?
		 ORDER BY id`,
		testScoreID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.TestScoreID, &a.FileName, &a.StorageRef, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
