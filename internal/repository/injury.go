package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type InjuryRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewInjuryRepository(sqlDB *sql.DB, logger zerolog.Logger) *InjuryRepository {
	return &InjuryRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

func (r *InjuryRepository) WithTx(tx *sql.Tx) *InjuryRepository {
	return &InjuryRepository{db: r.db, dbtx: tx, logger: r.logger}
}

// Append inserts a new injury log entry. The log is append-only; status is
// always derived from the latest entry, never updated in place.
func (r *InjuryRepository) Append(ctx context.Context, e *domain.InjuryLogEntry) error {
	res, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO injury_logs (athlete_user_id, clinician_user_id, is_injured, reason, logged_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.AthleteUserID, e.ClinicianUserID, e.IsInjured, e.Reason, e.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert injury log entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get injury log entry id: %w", err)
	}
	return nil
}

// Latest returns the most recent entry by logged_at, ties broken by row id.
// Returns nil when the athlete has no injury history.
func (r *InjuryRepository) Latest(ctx context.Context, athleteID string) (*domain.InjuryLogEntry, error) {
	e := &domain.InjuryLogEntry{}
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT id, athlete_user_id, clinician_user_id, is_injured, reason, logged_at
		 FROM injury_logs
		 WHERE athlete_user_id = ?
		 ORDER BY logged_at DESC, id DESC
		 LIMIT 1`,
		athleteID,
	).Scan(&e.ID, &e.AthleteUserID, &e.ClinicianUserID, &e.IsInjured, &e.Reason, &e.LoggedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest injury log entry: %w", err)
	}
	return e, nil
}

func (r *InjuryRepository) ListByAthlete(ctx context.Context, athleteID string) ([]domain.InjuryLogEntry, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT id, athlete_user_id, clinician_user_id, is_injured, reason, logged_at
		 FROM injury_logs
		 WHERE athlete_user_id = ?
		 ORDER BY logged_at, id`,
		athleteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list injury log entries: %w", err)
	}
	defer rows.Close()

	var result []domain.InjuryLogEntry
	for rows.Next() {
		var e domain.InjuryLogEntry
		if err := rows.Scan(&e.ID, &e.AthleteUserID, &e.ClinicianUserID, &e.IsInjured, &e.Reason, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan injury log entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
