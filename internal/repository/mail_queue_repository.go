package repository

import (
	"context"
	"strings"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// MailQueueRepository defines methods for interacting with the outgoing mail queue.
// Delivery itself happens elsewhere; the queue only tracks state.
type MailQueueRepository interface {
	EntityRepository

	GetPending(ctx context.Context, limit int) ([]models.Record, error)
	Lock(ctx context.Context, id int64) (bool, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
	DeleteAllByUserUUID(ctx context.Context, userUUID string) (int64, error)
}

// SQLMailQueueRepository is the database/sql implementation of MailQueueRepository
type SQLMailQueueRepository struct {
	EntityRepository
}

// NewMailQueueRepository creates a new MailQueueRepository
func NewMailQueueRepository(db *database.Pool) MailQueueRepository {
	return &SQLMailQueueRepository{
		EntityRepository: mustEntityRepository(db, models.MailQueueDescriptor()),
	}
}

// GetPending lists unlocked, undeleted mail waiting to be sent, oldest first
func (r *SQLMailQueueRepository) GetPending(ctx context.Context, limit int) ([]models.Record, error) {
	preds := []database.Predicate{
		database.Eq{Column: constants.ColumnStatus, Value: constants.MailStatusPending},
		database.Eq{Column: constants.ColumnLocked, Value: constants.FlagFalse},
		r.notDeleted(),
	}
	return r.FindBy(ctx, preds, constants.ColumnID+" ASC", limit)
}

// Lock claims a queued mail for delivery.
//
// The claim is a single conditional UPDATE, so two workers racing for the
// same row cannot both succeed.
//
// Returns:
//   - true if this call took the lock, false if the mail was already locked
//   - A not found error if the mail does not exist
func (r *SQLMailQueueRepository) Lock(ctx context.Context, id int64) (bool, error) {
	preds := []database.Predicate{
		database.Eq{Column: constants.ColumnID, Value: id},
		database.Eq{Column: constants.ColumnLocked, Value: constants.FlagFalse},
	}
	locked, err := r.UpdateBy(ctx, preds, models.Record{constants.ColumnLocked: constants.FlagTrue})
	if err != nil {
		return false, err
	}
	if locked > 0 {
		utils.LogEntityEvent(r.Descriptor().Name, "locked", id)
		return true, nil
	}

	// Nothing matched: either the row is gone or someone else holds it
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// MarkSent records a successful delivery and releases the lock
func (r *SQLMailQueueRepository) MarkSent(ctx context.Context, id int64) error {
	return r.finish(ctx, id, constants.MailStatusSent)
}

// MarkFailed records a failed delivery and releases the lock
func (r *SQLMailQueueRepository) MarkFailed(ctx context.Context, id int64) error {
	return r.finish(ctx, id, constants.MailStatusFailed)
}

// DeleteAllByUserUUID permanently removes every queued mail of a user,
// including soft-deleted entries, and returns how many were removed
func (r *SQLMailQueueRepository) DeleteAllByUserUUID(ctx context.Context, userUUID string) (int64, error) {
	userUUID = strings.TrimSpace(userUUID)
	if userUUID == "" {
		return 0, utils.NewValidationError(constants.ColumnUserUUID, "This field is required")
	}

	deleted, err := r.DeleteBy(ctx, []database.Predicate{
		database.Eq{Column: constants.ColumnUserUUID, Value: userUUID},
	})
	if err != nil {
		return 0, err
	}
	utils.LogEntityEvent(r.Descriptor().Name, "purged for user", userUUID)
	return deleted, nil
}

func (r *SQLMailQueueRepository) finish(ctx context.Context, id int64, status string) error {
	_, err := r.Update(ctx, id, models.Record{
		constants.ColumnStatus: status,
		constants.ColumnLocked: constants.FlagFalse,
	})
	return err
}

func (r *SQLMailQueueRepository) notDeleted() database.Predicate {
	sd := r.Descriptor().SoftDelete
	return database.NotFlagged{Column: sd.Column, Flagged: sd.DeletedValue, Default: sd.ActiveValue}
}
