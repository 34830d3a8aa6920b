package integration

import (
	"os"
	"testing"

	"github.com/dimitrije/standup-api/internal/store"
	"github.com/dimitrije/standup-api/tests/testutil"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// setupTest starts a database container and returns the document store
// plus a fixtures factory bound to it.
func setupTest(t *testing.T) (*testutil.TestDB, store.Store, *testutil.Fixtures) {
	t.Helper()
	tdb := testutil.SetupTestDB(t)
	documents := store.NewPostgres(tdb.DB)
	return tdb, documents, testutil.NewFixtures(documents)
}
