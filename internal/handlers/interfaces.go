package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FindOrCreateByEmail(ctx context.Context, email string) (*models.User, bool, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
	SetActiveTeam(ctx context.Context, id, teamID uuid.UUID) (*models.User, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, name, cutoff string, creator *models.User) (*models.Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	Update(ctx context.Context, id uuid.UUID, name, cutoff *string) (*models.Team, error)
	Members(ctx context.Context, team *models.Team) ([]models.User, error)
	AddMemberByEmail(ctx context.Context, team *models.Team, email string) (*models.User, bool, error)
	RemoveMember(ctx context.Context, team *models.Team, userID uuid.UUID) error
	JoinByCode(ctx context.Context, code string, user *models.User) (*models.Team, error)
	RegenerateJoinCode(ctx context.Context, team *models.Team) error
	Leave(ctx context.Context, team *models.Team, user *models.User) error
	EnsureTeamForViewer(ctx context.Context, userID uuid.UUID) (*models.Team, *models.User, error)
}

// StandupServiceInterface defines the methods used by handlers from StandupService
type StandupServiceInterface interface {
	GetOrCreate(ctx context.Context, team *models.Team, date string) (*models.StandupDocument, error)
	UpdateEntry(ctx context.Context, team *models.Team, date string, actor *models.User, targetUserID uuid.UUID, yesterday, today, blockers, token string) (*models.StandupDocument, error)
	Dates(ctx context.Context, team *models.Team) ([]string, error)
}

// KPIServiceInterface defines the methods used by handlers from KPIService
type KPIServiceInterface interface {
	TeamCompliance(ctx context.Context, team *models.Team, from, to string) (*services.TeamKPI, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreLoginToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	RedeemLoginToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	IsConfigured() bool
	SendMagicLink(to, loginURL string) error
	SendTeamInvite(to, teamName, inviterName, joinURL string) error
}
