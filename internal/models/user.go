package models

import (
	"time"

	"github.com/google/uuid"
)

// Team-scoped roles.
const (
	RoleManager = "manager"
	RoleMember  = "member"
)

// Membership ties a user to a team with a role.
type Membership struct {
	TeamID uuid.UUID `json:"team_id"`
	Role   string    `json:"role"`
}

// User is stored as a single document under users/<id>, with a companion
// index document under emails/<email> for case-insensitive email lookup.
//
// Memberships is the source of truth for team/role relationships. The
// scalar TeamID and Role fields mirror the active membership for older
// clients and are recomputed by Normalize before every persist; nothing
// in this codebase reads them.
type User struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Memberships  []Membership `json:"memberships"`
	ActiveTeamID uuid.UUID    `json:"active_team_id"`

	// Legacy mirrors of the active membership.
	TeamID uuid.UUID `json:"team_id"`
	Role   string    `json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleFor returns the user's role on the given team, or "" if the user
// is not a member.
func (u *User) RoleFor(teamID uuid.UUID) string {
	for _, m := range u.Memberships {
		if m.TeamID == teamID {
			return m.Role
		}
	}
	return ""
}

// IsManager reports whether the user holds the manager role on the team.
func (u *User) IsManager(teamID uuid.UUID) bool {
	return u.RoleFor(teamID) == RoleManager
}

// AddMembership adds or updates the membership for a team.
func (u *User) AddMembership(teamID uuid.UUID, role string) {
	for i, m := range u.Memberships {
		if m.TeamID == teamID {
			u.Memberships[i].Role = role
			return
		}
	}
	u.Memberships = append(u.Memberships, Membership{TeamID: teamID, Role: role})
}

// RemoveMembership drops the membership for a team. If the active team
// pointed at it, the pointer moves to the first remaining membership
// (or zero when none remain).
func (u *User) RemoveMembership(teamID uuid.UUID) {
	kept := u.Memberships[:0]
	for _, m := range u.Memberships {
		if m.TeamID != teamID {
			kept = append(kept, m)
		}
	}
	u.Memberships = kept
	if u.ActiveTeamID == teamID {
		u.ActiveTeamID = uuid.Nil
		if len(u.Memberships) > 0 {
			u.ActiveTeamID = u.Memberships[0].TeamID
		}
	}
}

// Normalize derives the legacy scalar fields from the active membership.
// Called by the user service before every persist.
func (u *User) Normalize() {
	if u.ActiveTeamID == uuid.Nil && len(u.Memberships) > 0 {
		u.ActiveTeamID = u.Memberships[0].TeamID
	}
	u.TeamID = u.ActiveTeamID
	u.Role = u.RoleFor(u.ActiveTeamID)
}
