package dto

import "github.com/google/uuid"

type UpdateEntryRequest struct {
	Yesterday string `json:"yesterday"`
	Today     string `json:"today"`
	Blockers  string `json:"blockers"`
	// Version is the concurrency token from the last read. Omitting it
	// skips the conflict check.
	Version string `json:"version,omitempty"`
}

type StandupRowResponse struct {
	UserID       uuid.UUID  `json:"user_id"`
	Name         string     `json:"name"`
	Yesterday    string     `json:"yesterday"`
	Today        string     `json:"today"`
	Blockers     string     `json:"blockers"`
	Status       string     `json:"status"`
	OverriddenBy *uuid.UUID `json:"overridden_by,omitempty"`
}

type StandupDatesResponse struct {
	Dates []string `json:"dates"`
}

type StandupResponse struct {
	TeamID    uuid.UUID            `json:"team_id"`
	Date      string               `json:"date"`
	Version   string               `json:"version"`
	UpdatedAt string               `json:"updated_at"`
	Locked    bool                 `json:"locked"`
	Rows      []StandupRowResponse `json:"rows"`
}
