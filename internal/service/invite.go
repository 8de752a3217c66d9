package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"scotia-sense/internal/auth"
	"scotia-sense/internal/config"
	"scotia-sense/internal/constants"
	"scotia-sense/internal/domain"
	"scotia-sense/internal/notify"
	"scotia-sense/internal/repository"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var phoneRe = regexp.MustCompile(`^\+\d{10,15}$`)

const defaultTeamName = "Scotia Sense"

type InviteService struct {
	db       *sql.DB
	invites  *repository.InviteRepository
	users    *repository.UserRepository
	teams    *repository.TeamRepository
	notifier notify.Notifier
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewInviteService(
	sqlDB *sql.DB,
	invites *repository.InviteRepository,
	users *repository.UserRepository,
	teams *repository.TeamRepository,
	notifier notify.Notifier,
	cfg *config.Config,
	logger zerolog.Logger,
) *InviteService {
	return &InviteService{
		db:       sqlDB,
		invites:  invites,
		users:    users,
		teams:    teams,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

type IssueInviteInput struct {
	Email       string
	PhoneNumber *string
	Role        *domain.Role // nil invites a team admin
	TeamID      *string
}

// IssueInvite creates a single-use invite token, resolves the team it binds
// to, and dispatches the registration link. The team comes from the
// inviter's own team first, then the explicit parameter; athlete invites
// without a resolvable team are rejected.
func (s *InviteService) IssueInvite(ctx context.Context, actor domain.Actor, in IssueInviteInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if strings.TrimSpace(in.Email) == "" {
		return "", domain.NewValidationError("email is required")
	}
	if in.Role != nil && !in.Role.Valid() {
		return "", domain.NewValidationError("invalid invite role %q", *in.Role)
	}
	if in.PhoneNumber != nil && !phoneRe.MatchString(*in.PhoneNumber) {
		return "", domain.NewValidationError("phone number must include country code and start with '+' (e.g. +447700900123)")
	}

	if err := auth.CanInvite(actor, in.Role); err != nil {
		return "", err
	}

	exists, err := s.users.ExistsByEmailOrPhone(ctx, in.Email, in.PhoneNumber)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domain.NewDuplicateError("a user with this email or phone already exists")
	}

	var teamID *string
	switch {
	case actor.TeamID != "":
		id := actor.TeamID
		teamID = &id
	case in.TeamID != nil:
		teamID = in.TeamID
	case in.Role != nil && *in.Role == domain.RoleAthlete:
		return "", domain.NewValidationError("inviter must belong to a team to invite athletes")
	}

	teamName := defaultTeamName
	if teamID != nil {
		team, err := s.teams.GetByID(ctx, *teamID)
		if err != nil {
			return "", err
		}
		if team == nil {
			return "", domain.NewNotFoundError("team %s not found", *teamID)
		}
		teamName = team.Name
	}

	invite := &domain.Invite{
		Token:       uuid.New().String(),
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		InviteRole:  in.Role,
		InvitedBy:   actor.UserID,
		TeamID:      teamID,
		CreatedAt:   time.Now(),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return "", err
	}

	link := fmt.Sprintf("%s/register?invite=%s", s.cfg.FrontendURL, invite.Token)
	msg := notify.InviteMessage{
		Email:     in.Email,
		TeamName:  teamName,
		RoleLabel: notify.RoleLabel(in.Role),
		Link:      link,
	}
	if in.PhoneNumber != nil {
		msg.PhoneNumber = *in.PhoneNumber
	}

	if err := s.notifier.SendInviteEmail(ctx, msg); err != nil {
		return "", err
	}
	// SMS is best-effort; a provider failure never voids the invite.
	if msg.PhoneNumber != "" {
		if err := s.notifier.SendInviteSMS(ctx, msg); err != nil {
			s.logger.Warn().Err(err).Str("phone", msg.PhoneNumber).Msg("invite sms failed")
		}
	}

	s.logger.Info().
		Str("email", in.Email).
		Str("role", msg.RoleLabel).
		Msg("invite issued")

	return link, nil
}

// GetInvite resolves a pending token for the registration form.
func (s *InviteService) GetInvite(ctx context.Context, token string) (*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, domain.NewNotFoundError("invite not found or invalid")
	}
	if invite.Used {
		return nil, domain.NewInvalidTokenError("invite has already been used")
	}
	return invite, nil
}

type RegistrationInput struct {
	FirstName   string
	LastName    string
	Password    string
	PhoneNumber *string

	// Role-specific fields; which ones apply depends on the invited role.
	Specialisation string
	ContactInfo    string
	Experience     string
	Sport          string
	Gender         string
	Position       string
	DateOfBirth    *time.Time
	CoachUserID    *string
}

// ConsumeInvite registers the invited user. The user row, the role subtype
// row, and the used flag all commit in one transaction: if any write fails
// the invite stays consumable.
func (s *InviteService) ConsumeInvite(ctx context.Context, token string, in RegistrationInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite == nil || invite.Used {
		return nil, domain.NewInvalidTokenError("invalid or expired invite token")
	}

	if in.FirstName == "" || in.LastName == "" || in.Password == "" {
		return nil, domain.NewValidationError("first_name, last_name and password are required")
	}

	phone := invite.PhoneNumber
	if phone == nil {
		phone = in.PhoneNumber
	}
	if phone != nil && !phoneRe.MatchString(*phone) {
		return nil, domain.NewValidationError("phone number must include country code and start with '+'")
	}

	existing, err := s.users.GetByEmail(ctx, invite.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewDuplicateError("email %s already registered", invite.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), constants.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	user := &domain.User{
		ID:          id,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       invite.Email,
		PhoneNumber: phone,
		Password:    string(hash),
		Role:        invite.InviteRole,
		IsAdmin:     invite.InviteRole == nil, // a role-less invite onboards a team admin
		TeamID:      invite.TeamID,
		CreatedAt:   time.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	utx := s.users.WithTx(tx)
	if err := utx.Create(ctx, user); err != nil {
		return nil, err
	}

	if invite.InviteRole != nil {
		switch *invite.InviteRole {
		case domain.RoleClinician:
			err = utx.CreateClinician(ctx, &domain.Clinician{
				UserID:         user.ID,
				Specialisation: in.Specialisation,
				ContactInfo:    in.ContactInfo,
			})
		case domain.RoleCoach:
			err = utx.CreateCoach(ctx, &domain.Coach{
				UserID:     user.ID,
				Experience: in.Experience,
			})
		case domain.RoleAthlete:
			inviterID := invite.InvitedBy
			err = utx.CreateAthlete(ctx, &domain.Athlete{
				UserID:          user.ID,
				ClinicianUserID: &inviterID,
				CoachUserID:     in.CoachUserID,
				Sport:           in.Sport,
				Gender:          in.Gender,
				Position:        in.Position,
				DateOfBirth:     in.DateOfBirth,
			})
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.invites.WithTx(tx).MarkUsed(ctx, token); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("invite consumed, user registered")

	return user, nil
}
