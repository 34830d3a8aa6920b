package integration

import (
	"context"
	"testing"

	"github.com/dimitrije/standup-api/internal/models"
	"github.com/dimitrije/standup-api/internal/services"
	"github.com/dimitrije/standup-api/internal/store"
	"github.com/dimitrije/standup-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStandupFlow exercises the whole standup lifecycle against a real
// database: lazy creation, concurrent edits, a manager override, and
// the compliance report derived from the persisted history.
func TestStandupFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	_, documents, fx := setupTest(t)
	ctx := context.Background()

	standups := services.NewStandupService(documents, fx.Users)
	kpi := services.NewKPIService(documents, standups)

	manager := fx.CreateUser(t, testutil.WithName("Alice"))
	team := fx.CreateTeam(t, manager)
	bob := fx.CreateUser(t)
	fx.AddTeamMember(t, team, bob)

	// First read creates the document at version 0 with a row per member.
	doc, err := standups.GetOrCreate(ctx, team, "2026-08-25")
	require.NoError(t, err)
	assert.Equal(t, "0", doc.Token())
	require.Len(t, doc.Rows, 2)

	// Reload users so memberships written by the fixtures are in play.
	manager, err = fx.Users.GetByID(ctx, manager.ID)
	require.NoError(t, err)
	bob, err = fx.Users.GetByID(ctx, bob.ID)
	require.NoError(t, err)

	// Bob fills his row with the fresh token.
	doc, err = standups.UpdateEntry(ctx, team, "2026-08-25", bob, bob.ID, "fixed the build", "reviews", "", "0")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, models.StatusPartial, doc.Row(bob.ID).Status)

	// A second writer still holding the version-0 token collides.
	_, err = standups.UpdateEntry(ctx, team, "2026-08-25", manager, manager.ID, "planning", "1:1s", "none", "0")
	assert.ErrorIs(t, err, services.ErrConflict)

	// After reloading the document the write goes through.
	doc, err = standups.GetOrCreate(ctx, team, "2026-08-25")
	require.NoError(t, err)
	doc, err = standups.UpdateEntry(ctx, team, "2026-08-25", manager, manager.ID, "planning", "1:1s", "none", doc.Token())
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Version)

	// The manager completes Bob's entry; the override is recorded.
	doc, err = standups.UpdateEntry(ctx, team, "2026-08-25", manager, bob.ID, "fixed the build", "reviews", "none", doc.Token())
	require.NoError(t, err)
	require.NotNil(t, doc.Row(bob.ID).OverriddenBy)
	assert.Equal(t, manager.ID, *doc.Row(bob.ID).OverriddenBy)
	require.Len(t, doc.Overrides, 1)

	// A second day, fully prepared for the manager only.
	_, err = standups.UpdateEntry(ctx, team, "2026-08-26", manager, manager.ID, "a", "b", "c", "")
	require.NoError(t, err)

	dates, err := standups.Dates(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-25", "2026-08-26"}, dates)

	report, err := kpi.TeamCompliance(ctx, team, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Days)
	require.Len(t, report.Members, 2)

	byID := map[string]services.MemberKPI{}
	for _, m := range report.Members {
		byID[m.UserID.String()] = m
	}
	assert.Equal(t, 2, byID[manager.ID.String()].Prepared)
	assert.Equal(t, 1, byID[bob.ID.String()].Prepared)
	assert.Equal(t, 1, byID[bob.ID.String()].Missing)
}

// TestStandupReconciliation verifies that membership changes show up in
// the live view without rewriting history.
func TestStandupReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	_, documents, fx := setupTest(t)
	ctx := context.Background()

	standups := services.NewStandupService(documents, fx.Users)

	manager := fx.CreateUser(t)
	team := fx.CreateTeam(t, manager)

	doc, err := standups.GetOrCreate(ctx, team, "2026-08-25")
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)

	carol := fx.CreateUser(t)
	fx.AddTeamMember(t, team, carol)

	// Carol appears in the live view at version 0 of her row.
	doc, err = standups.GetOrCreate(ctx, team, "2026-08-25")
	require.NoError(t, err)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, models.StatusMissing, doc.Row(carol.ID).Status)

	// But the stored document is untouched until someone writes.
	var persisted models.StandupDocument
	require.NoError(t, store.GetJSON(ctx, documents, store.StandupKey(team.ID, "2026-08-25"), &persisted))
	assert.Len(t, persisted.Rows, 1)
	assert.Equal(t, 0, persisted.Version)
}
