// Package migrations provides idempotent schema management for panelstore.
//
// Executed migrations are tracked in a dedicated table. A migration whose
// table already exists is recorded without running, and a recorded migration
// whose table has gone missing is run again, so the migrator is safe to run
// on every start against MySQL, PostgreSQL or SQLite.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/utils"
)

// Migration represents a database migration.
// Each migration creates one table and is tracked so it runs exactly once.
type Migration struct {
	// Name is a unique identifier for the migration
	Name string
	// Description is a human-readable explanation of what the migration does
	Description string
	// TableName is the table created by this migration, used for existence checks
	TableName string
	// RunSQL executes the migration within a transaction
	RunSQL func(ctx context.Context, tx *sql.Tx, dialect database.Dialect) error
}

// Migrator handles database migrations
type Migrator struct {
	db *database.Pool
}

// NewMigrator creates a new migrator.
//
// Parameters:
//   - db: A database connection pool to use for migrations
//
// Returns:
//   - *Migrator: A configured migrator
func NewMigrator(db *database.Pool) *Migrator {
	return &Migrator{
		db: db,
	}
}

// Result summarises a migration run
type Result struct {
	Run      int `json:"run"`
	Recorded int `json:"recorded"`
	Total    int `json:"total"`
}

// RunMigrations creates every missing table and records the migrations
// that have not been tracked yet.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//
// Returns:
//   - Result: How many migrations ran and how many were only recorded
//   - error: Any error encountered during migration, nil if successful
func (m *Migrator) RunMigrations(ctx context.Context) (Result, error) {
	log.Info().Str("driver", m.db.Dialect.String()).Msg("Running database migrations")
	startTime := time.Now()

	if err := m.createMigrationsTable(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to create migrations table: %w", err)
	}

	executed, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get executed migrations: %w", err)
	}

	migrations := GetMigrations()
	result := Result{Total: len(migrations)}

	for _, migration := range migrations {
		exists, err := m.tableExists(ctx, migration.TableName)
		if err != nil {
			return result, fmt.Errorf("failed to check if table %s exists: %w", migration.TableName, err)
		}

		switch {
		case exists && executed[migration.Name]:
			continue
		case exists:
			log.Info().
				Str("migration", migration.Name).
				Str("table", migration.TableName).
				Msg("Table already exists, recording migration as completed")

			if err := m.recordMigration(ctx, m.db, migration); err != nil {
				return result, err
			}
			result.Recorded++
		default:
			if executed[migration.Name] {
				log.Warn().
					Str("migration", migration.Name).
					Str("table", migration.TableName).
					Msg("Table doesn't exist but should. Running migration to create it.")
			} else {
				log.Info().
					Str("migration", migration.Name).
					Str("table", migration.TableName).
					Msg("Running migration")
			}

			if err := m.runMigration(ctx, migration, !executed[migration.Name]); err != nil {
				return result, err
			}
			result.Run++
		}
	}

	log.Info().
		Int("migrations_run", result.Run).
		Int("migrations_recorded", result.Recorded).
		Int("total_migrations", result.Total).
		Dur("duration", time.Since(startTime)).
		Msg("Database migrations completed")

	return result, nil
}

// createMigrationsTable creates the tracking table if it doesn't exist
func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + constants.TableMigrations + ` (
		name VARCHAR(255) NOT NULL PRIMARY KEY,
		description TEXT,
		executed_at ` + timestampType(m.db.Dialect) + ` DEFAULT CURRENT_TIMESTAMP
	)`
	return m.exec(ctx, m.db, query)
}

// getExecutedMigrations returns the names of recorded migrations
func (m *Migrator) getExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	query := `SELECT name FROM ` + constants.TableMigrations
	startTime := time.Now()
	rows, err := m.db.QueryContext(ctx, query)
	utils.LogDBQuery(query, nil, time.Since(startTime), err)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	migrations := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		migrations[name] = true
	}

	return migrations, rows.Err()
}

// runMigration runs a migration within a transaction.
// If the migration fails, the transaction is rolled back.
func (m *Migrator) runMigration(ctx context.Context, migration Migration, record bool) error {
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := migration.RunSQL(ctx, tx, m.db.Dialect); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
		if !record {
			return nil
		}
		return m.recordMigration(ctx, tx, migration)
	})
}

// recordMigration marks a migration as completed
func (m *Migrator) recordMigration(ctx context.Context, db database.Executor, migration Migration) error {
	query := fmt.Sprintf(`INSERT INTO %s (name, description) VALUES (%s, %s)`,
		constants.TableMigrations, m.db.Dialect.Placeholder(1), m.db.Dialect.Placeholder(2))

	startTime := time.Now()
	_, err := db.ExecContext(ctx, query, migration.Name, migration.Description)
	utils.LogDBQuery(query, []interface{}{migration.Name, migration.Description}, time.Since(startTime), err)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
	}
	return nil
}

// tableExists checks if a table exists in the current database schema
func (m *Migrator) tableExists(ctx context.Context, tableName string) (bool, error) {
	query := m.db.Dialect.TableExistsQuery()

	var count int64
	startTime := time.Now()
	err := m.db.QueryRowContext(ctx, query, tableName).Scan(&count)
	utils.LogDBQuery(query, []interface{}{tableName}, time.Since(startTime), err)
	return count > 0, err
}

// Status reports, per migration, whether it has been recorded
func (m *Migrator) Status(ctx context.Context) (map[string]bool, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	executed, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get executed migrations: %w", err)
	}

	status := make(map[string]bool)
	for _, migration := range GetMigrations() {
		status[migration.Name] = executed[migration.Name]
	}
	return status, nil
}

func (m *Migrator) exec(ctx context.Context, db database.Executor, query string) error {
	startTime := time.Now()
	_, err := db.ExecContext(ctx, query)
	utils.LogDBQuery(query, nil, time.Since(startTime), err)
	return err
}

// GetMigrations returns all migrations in the order they are applied
func GetMigrations() []Migration {
	return []Migration{
		createRealmsTable(),
		createLocationsTable(),
		createMailQueueTable(),
		createOidcProvidersTable(),
		createChatMessagesTable(),
	}
}
