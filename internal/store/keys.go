package store

import (
	"strings"

	"github.com/google/uuid"
)

// Key-space layout. Everything the application persists lives under one
// of these prefixes; ListKeys scans rely on the trailing separators.
const (
	userPrefix     = "users/"
	emailPrefix    = "emails/"
	teamPrefix     = "teams/"
	standupPrefix  = "standups/"
	tokenPrefix    = "tokens/"
	joinCodePrefix = "joincodes/"
)

// UserKey addresses a user document.
func UserKey(id uuid.UUID) string {
	return userPrefix + id.String()
}

// EmailKey addresses the email→user index document. Emails are
// case-insensitive identities, so the key is always lowercased.
func EmailKey(email string) string {
	return emailPrefix + strings.ToLower(strings.TrimSpace(email))
}

// TeamKey addresses a team document.
func TeamKey(id uuid.UUID) string {
	return teamPrefix + id.String()
}

// StandupKey addresses one team's standup document for a calendar date
// (YYYY-MM-DD).
func StandupKey(teamID uuid.UUID, date string) string {
	return StandupPrefix(teamID) + date
}

// StandupPrefix is the scan prefix covering all of a team's standup
// documents.
func StandupPrefix(teamID uuid.UUID) string {
	return standupPrefix + teamID.String() + "/"
}

// StandupDate extracts the date component from a standup document key,
// or "" if the key is not under the team's standup prefix.
func StandupDate(teamID uuid.UUID, key string) string {
	prefix := StandupPrefix(teamID)
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	return key[len(prefix):]
}

// JoinCodeKey addresses the join-code→team index document.
func JoinCodeKey(code string) string {
	return joinCodePrefix + code
}

// TokenKey addresses a stored auth token document by its hash.
func TokenKey(hash string) string {
	return tokenPrefix + hash
}

// TokenPrefixAll is the scan prefix covering all stored auth tokens.
func TokenPrefixAll() string {
	return tokenPrefix
}
