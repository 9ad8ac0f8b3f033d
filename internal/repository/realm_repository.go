package repository

import (
	"context"
	"strings"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// RealmRepository defines methods for interacting with realms
type RealmRepository interface {
	EntityRepository

	GetByName(ctx context.Context, name string) (models.Record, error)
}

// SQLRealmRepository is the database/sql implementation of RealmRepository
type SQLRealmRepository struct {
	EntityRepository
}

// NewRealmRepository creates a new RealmRepository
func NewRealmRepository(db *database.Pool) RealmRepository {
	return &SQLRealmRepository{
		EntityRepository: mustEntityRepository(db, models.RealmDescriptor()),
	}
}

// GetByName retrieves the first realm with the given name
func (r *SQLRealmRepository) GetByName(ctx context.Context, name string) (models.Record, error) {
	return findOneByName(ctx, r.EntityRepository, name)
}

// findOneByName returns the lowest keyed record whose name column equals name
func findOneByName(ctx context.Context, repo EntityRepository, name string) (models.Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.NewValidationError(constants.ColumnName, "This field is required")
	}

	records, err := repo.FindBy(ctx, []database.Predicate{
		database.Eq{Column: constants.ColumnName, Value: name},
	}, "", 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, utils.NewNotFoundError(repo.Descriptor().Name, "name="+name)
	}
	return records[0], nil
}
