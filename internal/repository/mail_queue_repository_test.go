package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/repository"
	"github.com/featherpanel/panelstore/internal/utils"
)

const testUserUUID = "5d3c7a8e-1b2f-4c3d-9e4f-0a1b2c3d4e5f"

// setupMailQueueRepositoryTest creates a new test database connection and mock
func setupMailQueueRepositoryTest(t *testing.T) (repository.MailQueueRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := repository.NewMailQueueRepository(database.NewPool(db, database.DialectMySQL))

	return repo, mock, func() {
		db.Close()
	}
}

func TestMailQueueRepository_GetPending(t *testing.T) {
	repo, mock, cleanup := setupMailQueueRepositoryTest(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "subject"}).
		AddRow(int64(1), "Welcome").
		AddRow(int64(2), "Invoice")
	mock.ExpectQuery(q("SELECT * FROM featherpanel_mail_queue WHERE status = ? AND locked = ? AND COALESCE(deleted, ?) <> ? ORDER BY id ASC LIMIT 10")).
		WithArgs("pending", "false", "false", "true").
		WillReturnRows(rows)

	pending, err := repo.GetPending(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMailQueueRepository_Lock(t *testing.T) {
	lockQuery := q("UPDATE featherpanel_mail_queue SET locked = ?, updated_at = ? WHERE id = ? AND locked = ?")

	t.Run("Takes the lock", func(t *testing.T) {
		repo, mock, cleanup := setupMailQueueRepositoryTest(t)
		defer cleanup()

		mock.ExpectExec(lockQuery).
			WithArgs("true", sqlmock.AnyArg(), int64(3), "false").
			WillReturnResult(sqlmock.NewResult(0, 1))

		locked, err := repo.Lock(context.Background(), 3)

		require.NoError(t, err)
		assert.True(t, locked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already locked", func(t *testing.T) {
		repo, mock, cleanup := setupMailQueueRepositoryTest(t)
		defer cleanup()

		mock.ExpectExec(lockQuery).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(q("SELECT * FROM featherpanel_mail_queue WHERE id = ? LIMIT 1")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "locked"}).AddRow(int64(3), "true"))

		locked, err := repo.Lock(context.Background(), 3)

		require.NoError(t, err)
		assert.False(t, locked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing mail", func(t *testing.T) {
		repo, mock, cleanup := setupMailQueueRepositoryTest(t)
		defer cleanup()

		mock.ExpectExec(lockQuery).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(q("SELECT * FROM featherpanel_mail_queue WHERE id = ? LIMIT 1")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		locked, err := repo.Lock(context.Background(), 3)

		assert.False(t, locked)
		assert.True(t, utils.IsNotFoundError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMailQueueRepository_BooleanFlags(t *testing.T) {
	insertQuery := q("INSERT INTO featherpanel_mail_queue (user_uuid, subject, body, status, locked, deleted, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	updateQuery := q("UPDATE featherpanel_mail_queue SET locked = ?, deleted = ?, updated_at = ? WHERE id = ?")

	t.Run("Create stores booleans as flag strings", func(t *testing.T) {
		repo, mock, cleanup := setupMailQueueRepositoryTest(t)
		defer cleanup()

		mock.ExpectExec(insertQuery).
			WithArgs(testUserUUID, "Welcome", "Hello", "pending", "true", "false", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(7, 1))

		id, err := repo.Create(context.Background(), models.Record{
			"user_uuid": testUserUUID,
			"subject":   "Welcome",
			"body":      "Hello",
			"locked":    true,
			"deleted":   false,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update folds the case of flag words", func(t *testing.T) {
		repo, mock, cleanup := setupMailQueueRepositoryTest(t)
		defer cleanup()

		mock.ExpectExec(updateQuery).
			WithArgs("false", "true", sqlmock.AnyArg(), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := repo.Update(context.Background(), 7, models.Record{"locked": " FALSE ", "deleted": true})

		require.NoError(t, err)
		assert.True(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other values are rejected", func(t *testing.T) {
		repo, mock, cleanup := setupMailQueueRepositoryTest(t)
		defer cleanup()

		for _, value := range []interface{}{"yes", 1, 0.5} {
			_, err := repo.Update(context.Background(), 7, models.Record{"locked": value})
			require.Error(t, err, "value %v", value)
			assert.True(t, utils.IsValidationError(err))
			assert.Contains(t, err.Error(), "Must be one of: true, false")
		}

		_, err := repo.Create(context.Background(), models.Record{
			"user_uuid": testUserUUID,
			"subject":   "Welcome",
			"body":      "Hello",
			"deleted":   []string{"true"},
		})
		assert.True(t, utils.IsValidationError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSQLite_MailQueueBooleanFlags(t *testing.T) {
	ctx := context.Background()
	mail := repository.NewMailQueueRepository(setupSQLite(t))

	id, err := mail.Create(ctx, models.Record{
		"user_uuid": testUserUUID,
		"subject":   "Welcome",
		"body":      "Hello",
		"locked":    true,
		"deleted":   false,
	})
	require.NoError(t, err)

	record, err := mail.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "true", record.String("locked"))
	assert.Equal(t, "false", record.String("deleted"))

	updated, err := mail.Update(ctx, id, models.Record{"locked": false})
	require.NoError(t, err)
	assert.True(t, updated)

	require.NoError(t, mail.SoftDelete(ctx, id))
	count, err := mail.GetCount(ctx, models.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, count)

	// A boolean restores the row as well
	_, err = mail.Update(ctx, id, models.Record{"deleted": false})
	require.NoError(t, err)
	count, err = mail.GetCount(ctx, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	record, err = mail.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "false", record.String("locked"))
	assert.Equal(t, "false", record.String("deleted"))
}

func TestMailQueueRepository_MarkSentAndFailed(t *testing.T) {
	repo, mock, cleanup := setupMailQueueRepositoryTest(t)
	defer cleanup()

	query := q("UPDATE featherpanel_mail_queue SET status = ?, locked = ?, updated_at = ? WHERE id = ?")
	mock.ExpectExec(query).
		WithArgs("sent", "false", sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs("failed", "false", sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkSent(context.Background(), 3))
	assert.NoError(t, repo.MarkFailed(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMailQueueRepository_DeleteAllByUserUUID(t *testing.T) {
	repo, mock, cleanup := setupMailQueueRepositoryTest(t)
	defer cleanup()

	mock.ExpectExec(q("DELETE FROM featherpanel_mail_queue WHERE user_uuid = ?")).
		WithArgs(testUserUUID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteAllByUserUUID(context.Background(), " "+testUserUUID+" ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = repo.DeleteAllByUserUUID(context.Background(), "")
	assert.True(t, utils.IsValidationError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_MailQueueLifecycle(t *testing.T) {
	ctx := context.Background()
	mail := repository.NewMailQueueRepository(setupSQLite(t))

	create := func(subject string) int64 {
		id, err := mail.Create(ctx, models.Record{"user_uuid": testUserUUID, "subject": subject, "body": "Hello"})
		require.NoError(t, err)
		return id.(int64)
	}
	first := create("First")
	second := create("Second")
	third := create("Third")

	require.NoError(t, mail.SoftDelete(ctx, third))

	pending, err := mail.GetPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0]["id"])

	locked, err := mail.Lock(ctx, first)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = mail.Lock(ctx, first)
	require.NoError(t, err)
	assert.False(t, locked, "a locked mail cannot be claimed twice")

	pending, err = mail.GetPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0]["id"])

	require.NoError(t, mail.MarkSent(ctx, first))
	record, err := mail.GetByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "sent", record.String("status"))
	assert.Equal(t, "false", record.String("locked"))

	_, err = mail.Lock(ctx, 9999)
	assert.True(t, utils.IsNotFoundError(err))

	deleted, err := mail.DeleteAllByUserUUID(ctx, testUserUUID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted, "soft-deleted mail is purged as well")

	count, err := mail.GetCount(ctx, models.ListOptions{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Zero(t, count)
}
