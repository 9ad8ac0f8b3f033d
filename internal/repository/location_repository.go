package repository

import (
	"context"

	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
)

// LocationRepository defines methods for interacting with node locations.
// Create accepts an explicit positive id so locations can be imported with
// their existing numbering.
type LocationRepository interface {
	EntityRepository

	GetByName(ctx context.Context, name string) (models.Record, error)
}

// SQLLocationRepository is the database/sql implementation of LocationRepository
type SQLLocationRepository struct {
	EntityRepository
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db *database.Pool) LocationRepository {
	return &SQLLocationRepository{
		EntityRepository: mustEntityRepository(db, models.LocationDescriptor()),
	}
}

// GetByName retrieves the first location with the given name
func (r *SQLLocationRepository) GetByName(ctx context.Context, name string) (models.Record, error) {
	return findOneByName(ctx, r.EntityRepository, name)
}
