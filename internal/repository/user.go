package repository

import (
	"context"
	"database/sql"
	"fmt"

	"scotia-sense/internal/domain"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	db     *sql.DB
	dbtx   DBTX
	logger zerolog.Logger
}

func NewUserRepository(sqlDB *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{db: sqlDB, dbtx: sqlDB, logger: logger}
}

func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: r.db, dbtx: tx, logger: r.logger}
}

const userColumns = `id, first_name, last_name, email, phone_number, password, role, is_admin, team_id, created_at`

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, nullStr(u.PhoneNumber), u.Password,
		nullRole(u.Role), u.IsAdmin, nullStr(u.TeamID), u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateError("email %s already registered", u.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var phone, teamID, role sql.NullString
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &phone, &u.Password, &role, &u.IsAdmin, &teamID, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.PhoneNumber = strPtr(phone)
	u.TeamID = strPtr(teamID)
	u.Role = rolePtr(role)
	return u, nil
}

// GetByID returns nil when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.dbtx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.dbtx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// ExistsByEmailOrPhone backs the pre-invite duplicate check.
func (r *UserRepository) ExistsByEmailOrPhone(ctx context.Context, email string, phone *string) (bool, error) {
	var count int
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = ? OR (phone_number IS NOT NULL AND phone_number = ?)`,
		email, nullStr(phone),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id, email string) error {
	_, err := r.dbtx.ExecContext(ctx, `UPDATE users SET email = ? WHERE id = ?`, email, id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateError("email %s already registered", email)
		}
		return fmt.Errorf("failed to update email: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id, first, last string) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ? WHERE id = ?`, first, last, id); err != nil {
		return fmt.Errorf("failed to update name: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE users SET password = ? WHERE id = ?`, hash, id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *UserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	res, err := r.dbtx.ExecContext(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, isAdmin, id)
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("user %s not found", id)
	}
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role *domain.Role) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`, nullRole(role), id); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return nil
}

func (r *UserRepository) RemoveFromTeam(ctx context.Context, id string) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE users SET team_id = NULL WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove user from team: %w", err)
	}
	return nil
}

// UserWithTeam is one row of the global user listing.
type UserWithTeam struct {
	User     domain.User
	TeamName *string
}

func (r *UserRepository) List(ctx context.Context) ([]UserWithTeam, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.email, u.role, u.is_admin, u.team_id, u.created_at, t.name
		 FROM users u
		 LEFT JOIN teams t ON u.team_id = t.id
		 ORDER BY u.last_name, u.first_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var result []UserWithTeam
	for rows.Next() {
		var row UserWithTeam
		var role, teamID, teamName sql.NullString
		if err := rows.Scan(&row.User.ID, &row.User.FirstName, &row.User.LastName, &row.User.Email,
			&role, &row.User.IsAdmin, &teamID, &row.User.CreatedAt, &teamName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		row.User.Role = rolePtr(role)
		row.User.TeamID = strPtr(teamID)
		row.TeamName = strPtr(teamName)
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *UserRepository) CreateAthlete(ctx context.Context, a *domain.Athlete) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO athletes (user_id, clinician_user_id, coach_user_id, sport, gender, position, date_of_birth)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, nullStr(a.ClinicianUserID), nullStr(a.CoachUserID),
		a.Sport, a.Gender, a.Position, nullTime(a.DateOfBirth),
	)
	if err != nil {
		return fmt.Errorf("failed to insert athlete: %w", err)
	}
	return nil
}

func (r *UserRepository) CreateClinician(ctx context.Context, c *domain.Clinician) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO clinicians (user_id, specialisation, contact_info) VALUES (?, ?, ?)`,
		c.UserID, c.Specialisation, c.ContactInfo,
	)
	if err != nil {
		return fmt.Errorf("failed to insert clinician: %w", err)
	}
	return nil
}

func (r *UserRepository) CreateCoach(ctx context.Context, c *domain.Coach) error {
	_, err := r.dbtx.ExecContext(ctx,
		`INSERT INTO coaches (user_id, experience) VALUES (?, ?)`,
		c.UserID, c.Experience,
	)
	if err != nil {
		return fmt.Errorf("failed to insert coach: %w", err)
	}
	return nil
}

// GetAthlete returns nil when no athlete row exists for the user.
func (r *UserRepository) GetAthlete(ctx context.Context, userID string) (*domain.Athlete, error) {
	a := &domain.Athlete{}
	var clinicianID, coachID sql.NullString
	var dob sql.NullTime
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT user_id, clinician_user_id, coach_user_id, sport, gender, position, date_of_birth
		 FROM athletes WHERE user_id = ?`,
		userID,
	).Scan(&a.UserID, &clinicianID, &coachID, &a.Sport, &a.Gender, &a.Position, &dob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get athlete: %w", err)
	}
	a.ClinicianUserID = strPtr(clinicianID)
	a.CoachUserID = strPtr(coachID)
	a.DateOfBirth = timePtr(dob)
	return a, nil
}

func (r *UserRepository) GetClinician(ctx context.Context, userID string) (*domain.Clinician, error) {
	c := &domain.Clinician{}
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT user_id, specialisation, contact_info FROM clinicians WHERE user_id = ?`,
		userID,
	).Scan(&c.UserID, &c.Specialisation, &c.ContactInfo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinician: %w", err)
	}
	return c, nil
}

func (r *UserRepository) GetCoach(ctx context.Context, userID string) (*domain.Coach, error) {
	c := &domain.Coach{}
	err := r.dbtx.QueryRowContext(ctx,
		`SELECT user_id, experience FROM coaches WHERE user_id = ?`,
		userID,
	).Scan(&c.UserID, &c.Experience)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coach: %w", err)
	}
	return c, nil
}

func (r *UserRepository) UpdateAthlete(ctx context.Context, a *domain.Athlete) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE athletes SET sport = ?, gender = ?, position = ?, date_of_birth = ? WHERE user_id = ?`,
		a.Sport, a.Gender, a.Position, nullTime(a.DateOfBirth), a.UserID); err != nil {
		return fmt.Errorf("failed to update athlete: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateAthleteClinician(ctx context.Context, userID, clinicianID string) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE athletes SET clinician_user_id = ? WHERE user_id = ?`, clinicianID, userID); err != nil {
		return fmt.Errorf("failed to update athlete clinician: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateAthleteCoach(ctx context.Context, userID, coachID string) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE athletes SET coach_user_id = ? WHERE user_id = ?`, coachID, userID); err != nil {
		return fmt.Errorf("failed to update athlete coach: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateClinician(ctx context.Context, c *domain.Clinician) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE clinicians SET specialisation = ?, contact_info = ? WHERE user_id = ?`,
		c.Specialisation, c.ContactInfo, c.UserID); err != nil {
		return fmt.Errorf("failed to update clinician: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateCoach(ctx context.Context, c *domain.Coach) error {
	if _, err := r.dbtx.ExecContext(ctx,
		`UPDATE coaches SET experience = ? WHERE user_id = ?`,
		c.Experience, c.UserID); err != nil {
		return fmt.Errorf("failed to update coach: %w", err)
	}
	return nil
}

// AssignedAthlete is one athlete row on a clinician or coach dashboard.
type AssignedAthlete struct {
	Athlete   domain.Athlete
	FirstName string
	LastName  string
}

func (r *UserRepository) ListAthletesByClinician(ctx context.Context, clinicianID string) ([]AssignedAthlete, error) {
	return r.listAssigned(ctx, "clinician_user_id", clinicianID)
}

func (r *UserRepository) ListAthletesByCoach(ctx context.Context, coachID string) ([]AssignedAthlete, error) {
	return r.listAssigned(ctx, "coach_user_id", coachID)
}

func (r *UserRepository) listAssigned(ctx context.Context, column, userID string) ([]AssignedAthlete, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT a.user_id, a.clinician_user_id, a.coach_user_id, a.sport, a.gender, a.position, a.date_of_birth,
		        u.first_name, u.last_name
		 FROM athletes a
		 JOIN users u ON a.user_id = u.id
		 WHERE a.`+column+` = ?
		 ORDER BY u.last_name, u.first_name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned athletes: %w", err)
	}
	defer rows.Close()

	var result []AssignedAthlete
	for rows.Next() {
		var row AssignedAthlete
		var clinicianID, coachID sql.NullString
		var dob sql.NullTime
		if err := rows.Scan(&row.Athlete.UserID, &clinicianID, &coachID, &row.Athlete.Sport,
			&row.Athlete.Gender, &row.Athlete.Position, &dob, &row.FirstName, &row.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan assigned athlete: %w", err)
		}
		row.Athlete.ClinicianUserID = strPtr(clinicianID)
		row.Athlete.CoachUserID = strPtr(coachID)
		row.Athlete.DateOfBirth = timePtr(dob)
		result = append(result, row)
	}
	return result, rows.Err()
}

// DirectoryEntry is an id-and-name row for the clinician/coach pickers.
type DirectoryEntry struct {
	UserID    string
	FirstName string
	LastName  string
	TeamID    *string
}

func (r *UserRepository) ListDirectory(ctx context.Context, role domain.Role) ([]DirectoryEntry, error) {
	rows, err := r.dbtx.QueryContext(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.team_id
		 FROM users u
		 WHERE u.role = ?
		 ORDER BY u.last_name, u.first_name`,
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s directory: %w", role, err)
	}
	defer rows.Close()

	var result []DirectoryEntry
	for rows.Next() {
		var e DirectoryEntry
		var teamID sql.NullString
		if err := rows.Scan(&e.UserID, &e.FirstName, &e.LastName, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan directory entry: %w", err)
		}
		e.TeamID = strPtr(teamID)
		result = append(result, e)
	}
	return result, rows.Err()
}
