package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type BaselineRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewBaselineRepository(sqlDB *sql.DB, logger zerolog.Logger) *BaselineRepository {
	return &BaselineRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

// WithTx returns a copy bound to the given transaction.
func (r *BaselineRepository) WithTx(tx *sql.Tx) *BaselineRepository {
	return &BaselineRepository{db: r.db, dbtx: tx, logger: r.logger}
}

func (r *BaselineRepository) Create(ctx context.Context, b *domain.BaselineScore) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO baseline_scores
		   (id, athlete_user_id, season, cognitive_function_score, chemical_marker_score, clinician_user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.AthleteUserID, b.Season, b.CognitiveFunctionScore, b.ChemicalMarkerScore,
		nullStr(b.ClinicianUserID), b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateError("baseline already exists for athlete %s in season %s", b.AthleteUserID, b.Season)
		}
		return fmt.Errorf("failed to insert baseline score: %w", err)
	}
	return nil
}

func (r *BaselineRepository) Exists(ctx context.Context, athleteID, season string) (bool, error) {
	var count int
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM baseline_scores WHERE athlete_user_id = ? AND season = ?`,
		athleteID, season,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check baseline existence: %w", err)
	}
	return count > 0, nil
}

// GetByAthleteSeason returns nil when no baseline matches.
func (r *BaselineRepository) GetByAthleteSeason(ctx context.Context, athleteID, season string) (*domain.BaselineScore, error) {
	b := &domain.BaselineScore{}
	var clinicianID sql.NullString
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT id, athlete_user_id, season, cognitive_function_score, chemical_marker_score, clinician_user_id, created_at
		 FROM baseline_scores
		 WHERE athlete_user_id = ? AND season = ?`,
		athleteID, season,
	).Scan(&b.ID, &b.AthleteUserID, &b.Season, &b.CognitiveFunctionScore, &b.ChemicalMarkerScore, &clinicianID, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline score: %w", err)
	}
	b.ClinicianUserID = strPtr(clinicianID)
	return b, nil
}

func (r *BaselineRepository) ListByAthlete(ctx context.Context, athleteID string) ([]domain.BaselineScore, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT id, athlete_user_id, season, cognitive_function_score, chemical_marker_score, clinician_user_id, created_at
		 FROM baseline_scores
		 WHERE athlete_user_id = ?
		 ORDER BY created_at`,
		athleteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list baseline scores: %w", err)
	}
	defer rows.Close()

	var result []domain.BaselineScore
	for rows.Next() {
		var b domain.BaselineScore
		var clinicianID sql.NullString
		if err := rows.Scan(&b.ID, &b.AthleteUserID, &b.Season, &b.CognitiveFunctionScore, &b.ChemicalMarkerScore, &clinicianID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan baseline score: %w", err)
		}
		b.ClinicianUserID = strPtr(clinicianID)
		result = append(result, b)
	}
	return result, rows.Err()
}
