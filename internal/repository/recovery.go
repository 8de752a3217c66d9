package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type RecoveryRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewRecoveryRepository(sqlDB *sql.DB, logger zerolog.Logger) *RecoveryRepository {
	return &RecoveryRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

func (r *RecoveryRepository) WithTx(tx *sql.Tx) *RecoveryRepository {
	return &RecoveryRepository{db: r.db, dbtx: tx, logger: r.logger}
}

func (r *RecoveryRepository) Append(ctx context.Context, e *domain.RecoveryStageEntry) error {
	res, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO recovery_stages (athlete_user_id, clinician_user_id, stage, updated_at)
		 VALUES (?, ?, ?, ?)`,
		e.AthleteUserID, e.ClinicianUserID, nullInt(e.Stage), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recovery stage entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get recovery stage entry id: %w", err)
	}
	return nil
}

// Latest returns the most recent stage entry, or nil when none exists.
func (r *RecoveryRepository) Latest(ctx context.Context, athleteID string) (*domain.RecoveryStageEntry, error) {
	e := &domain.RecoveryStageEntry{}
	var stage sql.NullInt64
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT id, athlete_user_id, clinician_user_id, stage, updated_at
		 FROM recovery_stages
		 WHERE athlete_user_id = ?
		 ORDER BY updated_at DESC, id DESC
		 LIMIT 1`,
		athleteID,
	).Scan(&e.ID, &e.AthleteUserID, &e.ClinicianUserID, &stage, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest recovery stage entry: %w", err)
	}
	e.Stage = intPtr(stage)
	return e, nil
}
