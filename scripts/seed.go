// Package scripts provides database seeding for panelstore.
//
// Seeds work like migrations: each one runs once inside a transaction and is
// recorded in a tracking table, so seeding is safe on new and existing panels.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/repository"
	"github.com/featherpanel/panelstore/internal/utils"
)

// Seed is one named unit of initial data
type Seed struct {
	Name     string
	SeedFunc func(ctx context.Context, tx *sql.Tx) error
}

// Seeder handles database seeding
type Seeder struct {
	db    *database.Pool
	repos *repository.Repositories
}

// NewSeeder creates a new seeder.
//
// Parameters:
//   - db: A database connection pool to use for seeding
//   - repos: The repositories seeds write through
//
// Returns:
//   - *Seeder: A configured seeder
func NewSeeder(db *database.Pool, repos *repository.Repositories) *Seeder {
	return &Seeder{
		db:    db,
		repos: repos,
	}
}

// DefaultLocations are created on an empty panel
func DefaultLocations() []models.Record {
	return []models.Record{
		{"name": "Default", "description": "Default node location"},
	}
}

// DefaultRealms are created on an empty panel
func DefaultRealms() []models.Record {
	return []models.Record{
		{"name": "Default", "description": "Default realm", "author": "FeatherPanel"},
	}
}

// Seeds returns every seed in the order it runs
func (s *Seeder) Seeds() []Seed {
	return []Seed{
		{Name: "default_locations", SeedFunc: s.seedDefaultLocations},
		{Name: "default_realms", SeedFunc: s.seedDefaultRealms},
	}
}

// SeedDatabase runs every seed that hasn't been executed yet.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//
// Returns:
//   - int: The number of seeds that ran
//   - error: Any error encountered during seeding, nil if successful
func (s *Seeder) SeedDatabase(ctx context.Context) (int, error) {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get executed seeds: %w", err)
	}

	ran := 0
	for _, seed := range s.Seeds() {
		if executedSeeds[seed.Name] {
			log.Debug().Str("seed", seed.Name).Msg("Seed already executed")
			continue
		}

		log.Info().Str("seed", seed.Name).Msg("Running seed")
		if err := s.runSeed(ctx, seed); err != nil {
			return ran, err
		}
		ran++
	}

	log.Info().
		Int("seeds_run", ran).
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return ran, nil
}

// createSeedsTable creates the seeds tracking table if it doesn't exist
func (s *Seeder) createSeedsTable(ctx context.Context) error {
	ts := "DATETIME"
	if s.db.Dialect == database.DialectPostgres {
		ts = "TIMESTAMP"
	}
	query := `CREATE TABLE IF NOT EXISTS ` + constants.TableSeeds + ` (
		name VARCHAR(255) NOT NULL PRIMARY KEY,
		executed_at ` + ts + ` DEFAULT CURRENT_TIMESTAMP
	)`

	startTime := time.Now()
	_, err := s.db.ExecContext(ctx, query)
	utils.LogDBQuery(query, nil, time.Since(startTime), err)
	return err
}

// getExecutedSeeds returns the names of recorded seeds
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	query := `SELECT name FROM ` + constants.TableSeeds
	startTime := time.Now()
	rows, err := s.db.QueryContext(ctx, query)
	utils.LogDBQuery(query, nil, time.Since(startTime), err)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed within a transaction and records it.
// If the seed fails, the transaction is rolled back.
func (s *Seeder) runSeed(ctx context.Context, seed Seed) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seed.SeedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", seed.Name, err)
		}

		query := fmt.Sprintf(`INSERT INTO %s (name) VALUES (%s)`, constants.TableSeeds, s.db.Dialect.Placeholder(1))
		startTime := time.Now()
		_, err := tx.ExecContext(ctx, query, seed.Name)
		utils.LogDBQuery(query, []interface{}{seed.Name}, time.Since(startTime), err)
		if err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedDefaultLocations creates the default locations whose names are not taken yet
func (s *Seeder) seedDefaultLocations(ctx context.Context, tx *sql.Tx) error {
	return seedByName(ctx, s.repos.Locations.WithTx(tx), DefaultLocations())
}

// seedDefaultRealms creates the default realms whose names are not taken yet
func (s *Seeder) seedDefaultRealms(ctx context.Context, tx *sql.Tx) error {
	return seedByName(ctx, s.repos.Realms.WithTx(tx), DefaultRealms())
}

// seedByName inserts every record whose name is not present yet
func seedByName(ctx context.Context, repo repository.EntityRepository, records []models.Record) error {
	existing, err := repo.FindBy(ctx, nil, "", 0)
	if err != nil {
		return fmt.Errorf("failed to list existing %s records: %w", repo.Descriptor().Name, err)
	}

	names := make(map[string]bool, len(existing))
	for _, record := range existing {
		names[record.String(constants.ColumnName)] = true
	}

	inserted := 0
	for _, record := range records {
		name := record.String(constants.ColumnName)
		if names[name] {
			continue
		}
		if _, err := repo.Create(ctx, record.Clone()); err != nil {
			return fmt.Errorf("failed to insert %s %q: %w", repo.Descriptor().Name, name, err)
		}
		inserted++
	}

	log.Info().
		Str("entity", repo.Descriptor().Name).
		Int("existing", len(existing)).
		Int("inserted", inserted).
		Msg("Seeding completed")

	return nil
}
