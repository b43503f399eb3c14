package checks

import (
	"testing"

	"weread-sync/core/database"
	"weread-sync/core/workspace/local"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func memoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestCheckStore(t *testing.T) {
	t.Run("Nil Database", func(t *testing.T) {
		_, err := CheckStore(nil)
		assert.Error(t, err)
	})

	t.Run("Empty Database", func(t *testing.T) {
		report, err := CheckStore(memoryDB(t), local.Models()...)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Equal(t, "missing", report.Tables["workspace_records"].Status)
		assert.Equal(t, "missing", report.Tables["workspace_blocks"].Status)
	})

	t.Run("Missing Column", func(t *testing.T) {
		db := memoryDB(t)
		require.NoError(t, db.Exec("CREATE TABLE workspace_blocks (seq integer primary key, id text)").Error)

		report, err := CheckStore(db, local.Models()...)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		blocks := report.Tables["workspace_blocks"]
		assert.Equal(t, "error", blocks.Status)
		assert.Contains(t, blocks.MissingColumns, "payload")
		assert.NotContains(t, blocks.MissingColumns, "id")
	})

	t.Run("Fixed", func(t *testing.T) {
		db := memoryDB(t)
		require.NoError(t, FixStore(db, local.Models()...))

		report, err := CheckStore(db, local.Models()...)
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.Empty(t, report.Errors)
		assert.Equal(t, "ok", report.Tables["workspace_records"].Status)
	})
}
