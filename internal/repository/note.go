package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type NoteRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewNoteRepository(sqlDB *sql.DB, logger zerolog.Logger) *NoteRepository {
	return &NoteRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

func (r *NoteRepository) WithTx(tx *sql.Tx) *NoteRepository {
	return &NoteRepository{db: r.db, dbtx: tx, logger: r.logger}
}

// Create appends a note. Notes are never edited or deleted.
func (r *NoteRepository) Create(ctx context.Context, n *domain.ClinicianNote) error {
	res, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO clinician_notes (test_score_id, athlete_user_id, clinician_user_id, note, visibility, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.TestScoreID, n.AthleteUserID, n.ClinicianUserID, n.Note, string(n.Visibility), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert clinician note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get clinician note id: %w", err)
	}
	return nil
}

// LatestShared returns the athlete's most recent shared-visibility note, or
// nil when none exists. Clinician-private notes never surface here.
func (r *NoteRepository) LatestShared(ctx context.Context, athleteID string) (*domain.ClinicianNote, error) {
	n := &domain.ClinicianNote{}
	var visibility string
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT id, test_score_id, athlete_user_id, clinician_user_id, note, visibility, created_at
		 FROM clinician_notes
		 WHERE athlete_user_id = ? AND visibility = 'shared'
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		athleteID,
	).Scan(&n.ID, &n.TestScoreID, &n.AthleteUserID, &n.ClinicianUserID, &n.Note, &visibility, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest shared note: %w", err)
	}
	n.Visibility = domain.NoteVisibility(visibility)
	return n, nil
}

func (r *NoteRepository) ListByTestScore(ctx context.Context, testScoreID string, includePrivate bool) ([]domain.ClinicianNote, error) {
	query := `SELECT id, test_score_id, athlete_user_id, clinician_user_id, note, visibility, created_at
		 FROM clinician_notes
		 WHERE test_score_id = ?`
	if !includePrivate {
		query += ` AND visibility = 'shared'`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.dbtx.QueryContext(ctx, query, testScoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var result []domain.ClinicianNote
	for rows.Next() {
		var n domain.ClinicianNote
		var visibility string
		if err := rows.Scan(&n.ID, &n.TestScoreID, &n.AthleteUserID, &n.ClinicianUserID, &n.Note, &visibility, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.Visibility = domain.NoteVisibility(visibility)
		result = append(result, n)
	}
	return result, rows.Err()
}
