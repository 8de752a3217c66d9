package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type InviteRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewInviteRepository(sqlDB *sql.DB, logger zerolog.Logger) *InviteRepository {
	return &InviteRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

func (r *InviteRepository) WithTx(tx *sql.Tx) *InviteRepository {
	return &InviteRepository{db: r.db, dbtx: tx, logger: r.logger}
}

func (r *InviteRepository) Create(ctx context.Context, inv *domain.Invite) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO invites (token, email, phone_number, invite_role, invited_by, team_id, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Token, inv.Email, nullStr(inv.PhoneNumber), nullRole(inv.InviteRole),
		inv.InvitedBy, nullStr(inv.TeamID), inv.Used, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetByToken returns nil when the token is unknown.
func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	inv := &domain.Invite{}
	var phone, teamID, role sql.NullString
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT token, email, phone_number, invite_role, invited_by, team_id, used, created_at
		 FROM invites
		 WHERE token = ?`,
		token,
	).Scan(&inv.Token, &inv.Email, &phone, &role, &inv.InvitedBy, &teamID, &inv.Used, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	inv.PhoneNumber = strPtr(phone)
	inv.TeamID = strPtr(teamID)
	inv.InviteRole = rolePtr(role)
	return inv, nil
}

// MarkUsed flips the single-use flag. The returned rows-affected guard
// catches a concurrent consumption of the same token.
func (r *InviteRepository) MarkUsed(ctx context.Context, token string) error {
	res, err := r.dbtx.ExecContext(ctx,
		`UPDATE invites SET used = TRUE WHERE token = ? AND used = FALSE`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to mark invite used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewInvalidTokenError("invite token already used")
	}
	return nil
}
