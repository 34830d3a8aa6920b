package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is stored as a single document under teams/<id>.
//
// CutoffTime is a team-local "HH:MM" wall-clock time; no timezone is
// stored. MemberIDs may reference users that no longer exist — readers
// filter those out instead of failing.
type Team struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	CutoffTime string      `json:"cutoff_time"`
	MemberIDs  []uuid.UUID `json:"member_ids"`
	JoinCode   string      `json:"join_code,omitempty"`
	CreatedBy  *uuid.UUID  `json:"created_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// HasMember reports whether the user id is listed on the team.
func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AddMember appends the user id if not already listed.
func (t *Team) AddMember(userID uuid.UUID) {
	if !t.HasMember(userID) {
		t.MemberIDs = append(t.MemberIDs, userID)
	}
}

// RemoveMember drops the user id from the member list.
func (t *Team) RemoveMember(userID uuid.UUID) {
	kept := t.MemberIDs[:0]
	for _, id := range t.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	t.MemberIDs = kept
}
