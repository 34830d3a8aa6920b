package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/standup-api/internal/config"
	"github.com/dimitrije/standup-api/internal/database"
	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/internal/store"
	"github.com/google/uuid"
)

// promote-manager grants the manager role on a team directly against
// the store, for bootstrapping and support situations.
func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: promote-manager <email> <team-id>")
		os.Exit(1)
	}

	email := os.Args[1]
	teamID, err := uuid.Parse(os.Args[2])
	if err != nil {
		log.Fatalf("Invalid team id: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	documents := store.NewPostgres(db)
	users := services.NewUserService(documents)

	user, err := users.GetByEmail(ctx, email)
	if errors.Is(err, services.ErrUserNotFound) {
		log.Fatalf("No user found with email: %s", email)
	}
	if err != nil {
		log.Fatalf("Failed to load user: %v", err)
	}

	var team models.Team
	if err := store.GetJSON(ctx, documents, store.TeamKey(teamID), &team); err != nil {
		log.Fatalf("Failed to load team: %v", err)
	}
	if !team.HasMember(user.ID) {
		log.Fatalf("User %s is not a member of team %s", email, team.Name)
	}

	user.AddMembership(teamID, models.RoleManager)
	if err := users.Save(ctx, user); err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	fmt.Printf("Successfully promoted %s to manager of %s\n", email, team.Name)
}
