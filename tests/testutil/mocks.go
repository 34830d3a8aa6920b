package testutil

import (
	"context"
	"time"

	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserService) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) SetActiveTeam(ctx context.Context, id, teamID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, name, cutoff string, creator *models.User) (*models.Team, error) {
	args := m.Called(ctx, name, cutoff, creator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Update(ctx context.Context, id uuid.UUID, name, cutoff *string) (*models.Team, error) {
	args := m.Called(ctx, id, name, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Members(ctx context.Context, team *models.Team) ([]models.User, error) {
	args := m.Called(ctx, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockTeamService) AddMemberByEmail(ctx context.Context, team *models.Team, email string) (*models.User, bool, error) {
	args := m.Called(ctx, team, email)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, team *models.Team, userID uuid.UUID) error {
	args := m.Called(ctx, team, userID)
	return args.Error(0)
}

func (m *MockTeamService) JoinByCode(ctx context.Context, code string, user *models.User) (*models.Team, error) {
	args := m.Called(ctx, code, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) RegenerateJoinCode(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamService) Leave(ctx context.Context, team *models.Team, user *models.User) error {
	args := m.Called(ctx, team, user)
	return args.Error(0)
}

func (m *MockTeamService) EnsureTeamForViewer(ctx context.Context, userID uuid.UUID) (*models.Team, *models.User, error) {
	args := m.Called(ctx, userID)
	var team *models.Team
	var user *models.User
	if args.Get(0) != nil {
		team = args.Get(0).(*models.Team)
	}
	if args.Get(1) != nil {
		user = args.Get(1).(*models.User)
	}
	return team, user, args.Error(2)
}

// MockStandupService mocks the StandupService
type MockStandupService struct {
	mock.Mock
}

func (m *MockStandupService) GetOrCreate(ctx context.Context, team *models.Team, date string) (*models.StandupDocument, error) {
	args := m.Called(ctx, team, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StandupDocument), args.Error(1)
}

func (m *MockStandupService) UpdateEntry(ctx context.Context, team *models.Team, date string, actor *models.User, targetUserID uuid.UUID, yesterday, today, blockers, token string) (*models.StandupDocument, error) {
	args := m.Called(ctx, team, date, actor, targetUserID, yesterday, today, blockers, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StandupDocument), args.Error(1)
}

func (m *MockStandupService) Dates(ctx context.Context, team *models.Team) ([]string, error) {
	args := m.Called(ctx, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockKPIService mocks the KPIService
type MockKPIService struct {
	mock.Mock
}

func (m *MockKPIService) TeamCompliance(ctx context.Context, team *models.Team, from, to string) (*services.TeamKPI, error) {
	args := m.Called(ctx, team, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TeamKPI), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreLoginToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) RedeemLoginToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmailService) SendMagicLink(to, loginURL string) error {
	args := m.Called(to, loginURL)
	return args.Error(0)
}

func (m *MockEmailService) SendTeamInvite(to, teamName, inviterName, joinURL string) error {
	args := m.Called(to, teamName, inviterName, joinURL)
	return args.Error(0)
}
