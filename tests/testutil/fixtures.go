package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Fixtures provides factory methods for creating test data against any
// document store (in-memory or real).
type Fixtures struct {
	Store store.Store
	Users *services.UserService
	Teams *services.TeamService

	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(st store.Store) *Fixtures {
	log := logrus.New()
	log.SetOutput(io.Discard)

	users := services.NewUserService(st)
	teams := services.NewTeamService(st, users, log, "Test Team", "10:00")

	return &Fixtures{Store: st, Users: users, Teams: teams}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := f.Users.Save(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateTeam creates a test team with the given user as manager
func (f *Fixtures) CreateTeam(t *testing.T, manager *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	cfg := teamConfig{
		name:   fmt.Sprintf("Test Team %d", f.counter),
		cutoff: "10:00",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	team, err := f.Teams.Create(context.Background(), cfg.name, cfg.cutoff, manager)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return team
}

type teamConfig struct {
	name   string
	cutoff string
}

// TeamOption configures a test team
type TeamOption func(*teamConfig)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(c *teamConfig) {
		c.name = name
	}
}

// WithCutoff sets the team's cutoff time
func WithCutoff(cutoff string) TeamOption {
	return func(c *teamConfig) {
		c.cutoff = cutoff
	}
}

// AddTeamMember adds an existing user to a team as a regular member
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User) {
	t.Helper()
	if _, _, err := f.Teams.AddMemberByEmail(context.Background(), team, user.Email); err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}
