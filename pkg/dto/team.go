package dto

import "github.com/google/uuid"

type CreateTeamRequest struct {
	Name       string `json:"name"`
	CutoffTime string `json:"cutoff_time,omitempty"`
}

type UpdateTeamRequest struct {
	Name       *string `json:"name,omitempty"`
	CutoffTime *string `json:"cutoff_time,omitempty"`
}

type AddMemberRequest struct {
	Email string `json:"email"`
}

type JoinTeamRequest struct {
	Code string `json:"code"`
}

type TeamResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CutoffTime string    `json:"cutoff_time"`
	JoinCode   string    `json:"join_code,omitempty"`
	Role       string    `json:"role"`
}

type TeamMemberResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   string    `json:"role"`
}
