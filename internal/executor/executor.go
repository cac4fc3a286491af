// Package executor runs generated SQL against the relational database
// under a read-only guard, and fabricates result shapes when execution
// is disabled.
package executor

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/seanankenbruck/sql-copilot/internal/errors"
	"github.com/seanankenbruck/sql-copilot/internal/observability"
)

// QueryResult holds an executed or simulated result set. Every row has
// exactly len(Columns) values.
type QueryResult struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Executor executes SQL statements against the configured database. The
// connection is opened and closed per call; there is no pooling across
// requests.
type Executor struct {
	driver string
	dsn    string
	guard  Guard
	logger *observability.Logger
}

// NewExecutor creates an executor for the given database locator
func NewExecutor(driver, dsn string, guard Guard) *Executor {
	return &Executor{
		driver: driver,
		dsn:    dsn,
		guard:  guard,
		logger: observability.NewLogger("executor"),
	}
}

// Execute runs one statement. In read-only mode the guard is consulted
// first and the database is never opened for a rejected statement. The
// statement runs inside a transaction that is committed only when not
// read-only.
func (e *Executor) Execute(ctx context.Context, sqlText string, readOnly bool) (*QueryResult, error) {
	if readOnly {
		if err := e.guard.Check(sqlText); err != nil {
			e.logger.Warn(ctx, "Guard rejected statement in read-only mode", map[string]interface{}{
				"sql": sqlText,
			})
			observability.GetGlobalMetrics().Inc(observability.MetricQueryGuardViolation, nil)
			return nil, err
		}
	}

	start := time.Now()
	result, err := e.run(ctx, sqlText, readOnly)
	observability.RecordDBMetrics(time.Since(start), err)
	if err != nil {
		e.logger.Error(ctx, "Statement execution failed", err, map[string]interface{}{
			"sql": sqlText,
		})
		return nil, errors.NewExecutionError(err)
	}

	e.logger.Info(ctx, "Statement executed", map[string]interface{}{
		"sql":  sqlText,
		"rows": len(result.Rows),
	})
	return result, nil
}

// run opens the database, executes the statement transactionally, and
// collects all rows
func (e *Executor) run(ctx context.Context, sqlText string, readOnly bool) (*QueryResult, error) {
	db, err := sql.Open(e.driver, e.dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, sqlText)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	result, err := collectRows(rows)
	rows.Close()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if readOnly {
		if err := tx.Rollback(); err != nil {
			return nil, err
		}
	} else {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// collectRows drains a result set into a QueryResult. Statements without
// a result set (DDL) yield empty columns and no rows.
func collectRows(rows *sql.Rows) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []string{}
	}

	result := &QueryResult{
		Columns: columns,
		Rows:    [][]interface{}{},
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		// Drivers hand back []byte for text columns; stringify for JSON
		for i, value := range values {
			if b, ok := value.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Ping checks database reachability, for health reporting
func (e *Executor) Ping(ctx context.Context) error {
	db, err := sql.Open(e.driver, e.dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}
