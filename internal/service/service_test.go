package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"scotia-sense/internal/config"
	"scotia-sense/internal/database"
	"scotia-sense/internal/domain"
	"scotia-sense/internal/notify"
	"scotia-sense/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fixture wires every service against a fresh in-memory database so tests
// exercise the real SQL, transactions and unique indexes.
type fixture struct {
	db *sql.DB

	users     *repository.UserRepository
	teams     *repository.TeamRepository
	invites   *repository.InviteRepository
	baselines *repository.BaselineRepository
	scores    *repository.TestScoreRepository
	injuries  *repository.InjuryRepository
	stages    *repository.RecoveryRepository
	notes     *repository.NoteRepository

	notifier *fakeNotifier
	files    *fakeFileStore

	baselineSvc *BaselineService
	scoreSvc    *ScoreService
	recoverySvc *RecoveryService
	inviteSvc   *InviteService
	teamSvc     *TeamService
	userSvc     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	log := zerolog.Nop()
	require.NoError(t, database.Migrate(db, log))

	f := &fixture{
		db:        db,
		users:     repository.NewUserRepository(db, log),
		teams:     repository.NewTeamRepository(db, log),
		invites:   repository.NewInviteRepository(db, log),
		baselines: repository.NewBaselineRepository(db, log),
		scores:    repository.NewTestScoreRepository(db, log),
		injuries:  repository.NewInjuryRepository(db, log),
		stages:    repository.NewRecoveryRepository(db, log),
		notes:     repository.NewNoteRepository(db, log),
		notifier:  &fakeNotifier{},
		files:     &fakeFileStore{},
	}

	cfg := &config.Config{FrontendURL: "http://localhost:5173"}

	f.baselineSvc = NewBaselineService(db, f.baselines, f.users, log)
	f.scoreSvc = NewScoreService(db, f.scores, f.baselines, f.injuries, f.notes, f.users, f.files, log)
	f.recoverySvc = NewRecoveryService(db, f.injuries, f.stages, f.users, log)
	f.inviteSvc = NewInviteService(db, f.invites, f.users, f.teams, f.notifier, cfg, log)
	f.teamSvc = NewTeamService(db, f.teams, f.users, log)
	f.userSvc = NewUserService(db, f.users, f.injuries, f.stages, f.scores, f.baselines, f.notes, log)

	return f
}

type fakeNotifier struct {
	emails   []notify.InviteMessage
	sms      []notify.InviteMessage
	emailErr error
	smsErr   error
}

func (n *fakeNotifier) SendInviteEmail(_ context.Context, msg notify.InviteMessage) error {
	if n.emailErr != nil {
		return n.emailErr
	}
	n.emails = append(n.emails, msg)
	return nil
}

func (n *fakeNotifier) SendInviteSMS(_ context.Context, msg notify.InviteMessage) error {
	if n.smsErr != nil {
		return n.smsErr
	}
	n.sms = append(n.sms, msg)
	return nil
}

type savedFile struct {
	testScoreID string
	fileName    string
	content     []byte
}

type fakeFileStore struct {
	saved   []savedFile
	removed []string
}

func (s *fakeFileStore) Save(_ context.Context, testScoreID, fileName string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", err
	}
	s.saved = append(s.saved, savedFile{testScoreID: testScoreID, fileName: fileName, content: buf.Bytes()})
	return fmt.Sprintf("mem://%s/%s", testScoreID, fileName), nil
}

func (s *fakeFileStore) Remove(_ context.Context, ref string) error {
	s.removed = append(s.removed, ref)
	return nil
}

var userSeq int

func nextID(prefix string) string {
	userSeq++
	return fmt.Sprintf("%s-%d", prefix, userSeq)
}

func rolePtr(r domain.Role) *domain.Role { return &r }

func strPtr(s string) *string { return &s }

func f64Ptr(v float64) *float64 { return &v }

func (f *fixture) seedTeam(t *testing.T, name string) string {
	t.Helper()
	id := nextID("team")
	require.NoError(t, f.teams.Create(context.Background(), &domain.Team{
		ID: id, Name: name, Sport: "rugby", CreatedAt: time.Now(),
	}))
	return id
}

func (f *fixture) seedUser(t *testing.T, role *domain.Role, isAdmin bool, teamID *string) domain.User {
	t.Helper()
	id := nextID("user")
	u := domain.User{
		ID:        id,
		FirstName: "Test",
		LastName:  id,
		Email:     id + "@example.com",
		Password:  "x",
		Role:      role,
		IsAdmin:   isAdmin,
		TeamID:    teamID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

// seedClinicianWithAthlete creates an assigned clinician/athlete pair on a
// fresh team and returns both actors plus the athlete user id.
func (f *fixture) seedClinicianWithAthlete(t *testing.T) (clinician domain.Actor, athleteActor domain.Actor, athleteID string) {
	t.Helper()
	teamID := f.seedTeam(t, nextID("Team"))

	clinUser := f.seedUser(t, rolePtr(domain.RoleClinician), false, &teamID)
	require.NoError(t, f.users.CreateClinician(context.Background(), &domain.Clinician{UserID: clinUser.ID}))

	athUser := f.seedUser(t, rolePtr(domain.RoleAthlete), false, &teamID)
	require.NoError(t, f.users.CreateAthlete(context.Background(), &domain.Athlete{
		UserID:          athUser.ID,
		ClinicianUserID: &clinUser.ID,
		Sport:           "rugby",
		Position:        "flanker",
	}))

	clinician = domain.Actor{UserID: clinUser.ID, Kind: domain.ActorClinician, TeamID: teamID}
	athleteActor = domain.Actor{UserID: athUser.ID, Kind: domain.ActorAthlete, TeamID: teamID}
	return clinician, athleteActor, athUser.ID
}
