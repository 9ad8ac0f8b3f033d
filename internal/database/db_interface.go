// Package database provides database access for panelstore.
// It implements a connection pool bound to a SQL dialect, transaction management,
// and the statement builder used by the generic entity repository.
package database

import (
	"context"
	"database/sql"
)

// Executor is the subset of *sql.DB and *sql.Tx used to run statements.
// Repositories accept an Executor so the same code runs inside or outside
// a transaction.
type Executor interface {
	// ExecContext executes a query without returning any rows.
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// QueryContext executes a query that returns rows.
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

	// QueryRowContext executes a query that is expected to return at most one row.
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ensure both pools and transactions satisfy Executor.
var (
	_ Executor = (*sql.DB)(nil)
	_ Executor = (*sql.Tx)(nil)
	_ Executor = (*Pool)(nil)
)
