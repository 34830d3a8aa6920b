package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/store"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNotAMember   = errors.New("user is not a member of that team")
)

// emailIndex is the emails/<email> document pointing at a user id.
type emailIndex struct {
	UserID uuid.UUID `json:"user_id"`
}

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := store.GetJSON(ctx, s.store, store.UserKey(id), &user)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var idx emailIndex
	err := store.GetJSON(ctx, s.store, store.EmailKey(email), &idx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load email index: %w", err)
	}
	return s.GetByID(ctx, idx.UserID)
}

// FindOrCreateByEmail resolves the user owning an email address,
// creating a fresh record when none exists. The second return value
// reports whether a new user was created.
func (s *UserService) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	user, err := s.GetByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()
	user = &models.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      defaultName(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Save(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *UserService) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if err := s.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActiveTeam switches which membership is in effect for role-gated
// operations. The user must already hold a membership on the team.
func (s *UserService) SetActiveTeam(ctx context.Context, id, teamID uuid.UUID) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.RoleFor(teamID) == "" {
		return nil, ErrNotAMember
	}
	user.ActiveTeamID = teamID
	if err := s.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Save normalizes the legacy fields and persists the user document plus
// its email index.
func (s *UserService) Save(ctx context.Context, user *models.User) error {
	user.Normalize()
	user.UpdatedAt = time.Now().UTC()

	if err := store.PutJSON(ctx, s.store, store.UserKey(user.ID), user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if err := store.PutJSON(ctx, s.store, store.EmailKey(user.Email), emailIndex{UserID: user.ID}); err != nil {
		return fmt.Errorf("failed to save email index: %w", err)
	}
	return nil
}

func defaultName(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
