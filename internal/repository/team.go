package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type TeamRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewTeamRepository(sqlDB *sql.DB, logger zerolog.Logger) *TeamRepository {
	return &TeamRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

func (r *TeamRepository) WithTx(tx *sql.Tx) *TeamRepository {
	return &TeamRepository{db: r.db, dbtx: tx, logger: r.logger}
}

func (r *TeamRepository) Create(ctx context.Context, t *domain.Team) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO teams (id, name, sport, created_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.Sport, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateError("team name %q already exists", t.Name)
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// GetByID returns nil when the team does not exist.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	t := &domain.Team{}
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT id, name, sport, created_at FROM teams WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Name, &t.Sport, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

func (r *TeamRepository) Update(ctx context.Context, t *domain.Team) error {
	res, err := r.dbtx.ExecContext(ctx,
		`UPDATE teams SET name = ?, sport = ? WHERE id = ?`,
		t.Name, t.Sport, t.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateError("team name %q already exists", t.Name)
		}
		return fmt.Errorf("failed to update team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("team %s not found", t.ID)
	}
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.dbtx.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("team %s not found", id)
	}
	return nil
}

func (r *TeamRepository) CountMembers(ctx context.Context, teamID string) (int, error) {
	var count int
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE team_id = ?`,
		teamID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT id, name, sport, created_at FROM teams ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Sport, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// TeamWithAdmin is one row of the superadmin team overview.
type TeamWithAdmin struct {
	Team      domain.Team
	AdminName *string
}

func (r *TeamRepository) ListWithAdmins(ctx context.Context) ([]TeamWithAdmin, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT t.id, t.name, t.sport, t.created_at, u.first_name, u.last_name
		 FROM teams t
		 LEFT JOIN users u ON u.team_id = t.id AND u.is_admin = TRUE
		 ORDER BY t.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams with admins: %w", err)
	}
	defer rows.Close()

	var result []TeamWithAdmin
	for rows.Next() {
		var row TeamWithAdmin
		var first, last sql.NullString
		if err := rows.Scan(&row.Team.ID, &row.Team.Name, &row.Team.Sport, &row.Team.CreatedAt, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan team with admin: %w", err)
		}
		if first.Valid {
			name := first.String + " " + last.String
			row.AdminName = &name
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
