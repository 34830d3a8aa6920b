package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Row completion status, derived from the three free-text fields.
const (
	StatusPrepared = "prepared"
	StatusPartial  = "partial"
	StatusMissing  = "missing"
)

// DateFormat is the calendar-date layout used in standup document keys.
const DateFormat = "2006-01-02"

// StandupRow is one team member's entry for a day. Name is denormalized
// from the user record when the row is first synthesized; later renames
// do not rewrite historical rows.
type StandupRow struct {
	UserID       uuid.UUID  `json:"user_id"`
	Name         string     `json:"name"`
	Yesterday    string     `json:"yesterday"`
	Today        string     `json:"today"`
	Blockers     string     `json:"blockers"`
	Status       string     `json:"status"`
	OverriddenBy *uuid.UUID `json:"overridden_by,omitempty"`
}

// Override records a manager editing another member's row. The log is
// append-only and informational.
type Override struct {
	ManagerID uuid.UUID `json:"manager_id"`
	UserID    uuid.UUID `json:"user_id"`
	At        time.Time `json:"at"`
}

// StandupDocument is one team's one day of standup entries, stored whole
// under standups/<team>/<date>. Version increases by one on every
// persisted entry update and doubles as the concurrency token.
type StandupDocument struct {
	TeamID    uuid.UUID    `json:"team_id"`
	Date      string       `json:"date"`
	Version   int          `json:"version"`
	UpdatedAt time.Time    `json:"updated_at"`
	Rows      []StandupRow `json:"rows"`
	Overrides []Override   `json:"overrides,omitempty"`
}

// Row returns the row for the given user, or nil.
func (d *StandupDocument) Row(userID uuid.UUID) *StandupRow {
	for i := range d.Rows {
		if d.Rows[i].UserID == userID {
			return &d.Rows[i]
		}
	}
	return nil
}

// Token is the concurrency token clients must echo back on update.
func (d *StandupDocument) Token() string {
	return strconv.Itoa(d.Version)
}

// RowStatus maps the three free-text fields to a completion status:
// all blank is missing, all filled is prepared, anything else partial.
func RowStatus(yesterday, today, blockers string) string {
	filled := 0
	for _, s := range []string{yesterday, today, blockers} {
		if strings.TrimSpace(s) != "" {
			filled++
		}
	}
	switch filled {
	case 0:
		return StatusMissing
	case 3:
		return StatusPrepared
	default:
		return StatusPartial
	}
}
