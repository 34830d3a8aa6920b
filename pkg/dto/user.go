package dto

import "github.com/google/uuid"

type UpdateUserRequest struct {
	Name string `json:"name"`
}

type SetActiveTeamRequest struct {
	TeamID uuid.UUID `json:"team_id"`
}

type MembershipResponse struct {
	TeamID uuid.UUID `json:"team_id"`
	Role   string    `json:"role"`
}

type UserResponse struct {
	ID           uuid.UUID            `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	ActiveTeamID uuid.UUID            `json:"active_team_id"`
	Memberships  []MembershipResponse `json:"memberships"`
}
