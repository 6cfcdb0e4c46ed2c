package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcusv/linguaflash/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations
// applied. Each call gets a fresh, isolated database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	d, err := db.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d.DB
}
