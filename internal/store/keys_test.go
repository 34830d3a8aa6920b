package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEmailKey_Canonicalizes(t *testing.T) {
	assert.Equal(t, "emails/alice@example.com", EmailKey("alice@example.com"))
	assert.Equal(t, "emails/alice@example.com", EmailKey("Alice@Example.COM"))
	assert.Equal(t, "emails/alice@example.com", EmailKey("  alice@example.com  "))
}

func TestStandupKeys(t *testing.T) {
	teamID := uuid.New()

	key := StandupKey(teamID, "2026-08-27")
	assert.Equal(t, "standups/"+teamID.String()+"/2026-08-27", key)
	assert.Equal(t, "standups/"+teamID.String()+"/", StandupPrefix(teamID))

	assert.Equal(t, "2026-08-27", StandupDate(teamID, key))

	// Keys outside the team's prefix yield no date.
	assert.Equal(t, "", StandupDate(uuid.New(), key))
	assert.Equal(t, "", StandupDate(teamID, "users/"+teamID.String()))
}

func TestTokenAndJoinCodeKeys(t *testing.T) {
	assert.Equal(t, "tokens/abc123", TokenKey("abc123"))
	assert.Equal(t, "tokens/", TokenPrefixAll())
	assert.Equal(t, "joincodes/deadbeef", JoinCodeKey("deadbeef"))
}

func TestUserAndTeamKeys(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "users/"+id.String(), UserKey(id))
	assert.Equal(t, "teams/"+id.String(), TeamKey(id))
}
