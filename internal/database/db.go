package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq" // Import PostgreSQL driver
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // Import SQLite driver

	"github.com/featherpanel/panelstore/internal/config"
	"github.com/featherpanel/panelstore/internal/constants"
)

// Pool represents a database connection pool bound to a SQL dialect
type Pool struct {
	*sql.DB
	Dialect Dialect
}

// NewPool wraps an already opened database handle.
func NewPool(db *sql.DB, dialect Dialect) *Pool {
	return &Pool{DB: db, Dialect: dialect}
}

// Connect creates a new database connection pool
func Connect(cfg *config.AppConfig) (*Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultConnectTimeout)
	defer cancel()

	dialect, err := DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("driver", dialect.String()).
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Name).
		Str("user", cfg.Database.User).
		Msg("Connecting to database")

	dsn := cfg.Database.ConnectionString()
	switch dialect {
	case DialectMySQL:
		if err := ensureMySQLDatabase(ctx, dsn); err != nil {
			return nil, err
		}
	case DialectSQLite:
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DefaultConnMaxIdleTime)

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("driver", dialect.String()).Msg("Successfully connected to database")

	return NewPool(db, dialect), nil
}

// ensureMySQLDatabase connects without selecting a schema and creates the
// configured database if it does not exist yet.
func ensureMySQLDatabase(ctx context.Context, dsn string) error {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("invalid mysql dsn: %w", err)
	}
	dbName := parsed.DBName
	parsed.DBName = ""

	rootDB, err := sql.Open("mysql", parsed.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to connect to root database: %w", err)
	}
	defer rootDB.Close()

	// Identifier cannot be bound as a parameter; quote it instead
	_, err = rootDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	log.Info().Msgf("Ensured database '%s' exists", dbName)
	return nil
}

// Close closes the database connection pool
func (p *Pool) Close() {
	if p != nil && p.DB != nil {
		log.Info().Msg("Closing database connection pool")
		if err := p.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection pool")
		}
	}
}

// Transaction executes a function within a transaction
func (p *Pool) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Handle panics to ensure proper rollback
	defer func() {
		if r := recover(); r != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HealthCheck performs a health check on the database connection
func (p *Pool) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBHealthCheckTimeout)
	defer cancel()

	if err := p.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := p.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("database returned unexpected result: %d", result)
	}

	return nil
}
