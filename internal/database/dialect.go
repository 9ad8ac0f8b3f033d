package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/featherpanel/panelstore/internal/constants"
)

// Dialect identifies the SQL flavour spoken by the connected database.
// The zero value behaves as MySQL, the panel's native backend.
type Dialect string

// Supported dialects.
const (
	DialectMySQL    Dialect = constants.DriverMySQL
	DialectPostgres Dialect = constants.DriverPostgres
	DialectSQLite   Dialect = constants.DriverSQLite
)

// DialectFor resolves a configured driver name to a Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", constants.DriverMySQL, "mariadb":
		return DialectMySQL, nil
	case constants.DriverPostgres, "postgresql":
		return DialectPostgres, nil
	case constants.DriverSQLite, "sqlite3":
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver: %s", driver)
}

// DriverName returns the database/sql driver name registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite"
	default:
		return "mysql"
	}
}

// String returns the dialect name.
func (d Dialect) String() string {
	if d == "" {
		return string(DialectMySQL)
	}
	return string(d)
}

// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// UsesReturning reports whether inserted auto-increment keys must be read with
// RETURNING instead of sql.Result.LastInsertId.
func (d Dialect) UsesReturning() bool {
	return d == DialectPostgres
}

// LimitOffset renders a pagination clause. A non-positive limit means no limit.
func (d Dialect) LimitOffset(limit, offset int) string {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf(" LIMIT %d", limit)
	case offset > 0:
		// MySQL and SQLite cannot express OFFSET without LIMIT
		switch d {
		case DialectPostgres:
			return fmt.Sprintf(" OFFSET %d", offset)
		case DialectSQLite:
			return fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
		default:
			return fmt.Sprintf(" LIMIT 18446744073709551615 OFFSET %d", offset)
		}
	}
	return ""
}

// AutoIncrementKey returns the column definition for an auto-increment primary key.
func (d Dialect) AutoIncrementKey(column string) string {
	switch d {
	case DialectPostgres:
		return column + " BIGSERIAL PRIMARY KEY"
	case DialectSQLite:
		return column + " INTEGER PRIMARY KEY AUTOINCREMENT"
	default:
		return column + " BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	}
}

// TableExistsQuery returns a query taking the table name as its only argument
// and yielding a single count.
func (d Dialect) TableExistsQuery() string {
	switch d {
	case DialectPostgres:
		return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
	case DialectSQLite:
		return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	default:
		return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
	}
}

// ResyncSequence returns the statement that moves an auto-increment sequence past
// the largest key in the table, or "" when the database does this on its own.
// PostgreSQL serial sequences do not advance on explicit-key inserts.
func (d Dialect) ResyncSequence(table, column string) string {
	if d != DialectPostgres {
		return ""
	}
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 1))",
		table, column, column, table,
	)
}
