package executor

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
)

// newTestDB creates a throwaway sqlite database with a seeded table
func newTestDB(t *testing.T) string {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE airport (id INTEGER PRIMARY KEY, code TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO airport (id, code) VALUES (1, 'JFK'), (2, 'LHR')`)
	require.NoError(t, err)

	return dsn
}

// TestExecuteSelect tests a read-only query round trip
func TestExecuteSelect(t *testing.T) {
	exec := NewExecutor("sqlite", newTestDB(t), NewKeywordGuard())

	result, err := exec.Execute(context.Background(), "SELECT id, code FROM airport ORDER BY id", true)

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "code"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "JFK", result.Rows[0][1])
	assert.Equal(t, "LHR", result.Rows[1][1])
}

// TestExecuteGuardRejection verifies destructive statements never reach
// the database in read-only mode
func TestExecuteGuardRejection(t *testing.T) {
	// Nonexistent directory: opening the database would fail loudly, so a
	// passing test proves the guard fired before any open
	exec := NewExecutor("sqlite", "/nonexistent/dir/test.db", NewKeywordGuard())

	_, err := exec.Execute(context.Background(), "DELETE FROM airport", true)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDestructiveOperation, errors.Code(err))
}

// TestExecuteReadOnlyRollsBack verifies read-only transactions are rolled
// back even for statements the guard does not recognize as destructive
func TestExecuteReadOnlyRollsBack(t *testing.T) {
	dsn := newTestDB(t)
	exec := NewExecutor("sqlite", dsn, NewKeywordGuard())

	// CREATE carries no guard keyword, so it runs and must be rolled back
	_, err := exec.Execute(context.Background(), "CREATE TABLE scratch (id INTEGER)", true)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='scratch'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// TestExecuteWriteCommits verifies writes are committed when read-only
// mode is off
func TestExecuteWriteCommits(t *testing.T) {
	dsn := newTestDB(t)
	exec := NewExecutor("sqlite", dsn, NewKeywordGuard())

	_, err := exec.Execute(context.Background(), "INSERT INTO airport (id, code) VALUES (3, 'AMS')", false)
	require.NoError(t, err)

	result, err := exec.Execute(context.Background(), "SELECT COUNT(*) FROM airport", true)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.EqualValues(t, 3, result.Rows[0][0])
}

// TestExecuteDatabaseFault tests the execution error path
func TestExecuteDatabaseFault(t *testing.T) {
	exec := NewExecutor("sqlite", newTestDB(t), NewKeywordGuard())

	_, err := exec.Execute(context.Background(), "SELECT * FROM no_such_table", true)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeExecution, errors.Code(err))
}

// TestPing tests database reachability
func TestPing(t *testing.T) {
	exec := NewExecutor("sqlite", newTestDB(t), NewKeywordGuard())

	assert.NoError(t, exec.Ping(context.Background()))
}
