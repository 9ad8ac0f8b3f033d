package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/repository"
	"github.com/featherpanel/panelstore/internal/utils"
	"github.com/featherpanel/panelstore/migrations"
)

// setupSQLite opens a migrated SQLite database in a temporary directory
func setupSQLite(t *testing.T) *database.Pool {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "panel.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	pool := database.NewPool(db, database.DialectSQLite)
	_, err = migrations.NewMigrator(pool).RunMigrations(context.Background())
	require.NoError(t, err)

	return pool
}

func TestSQLite_RealmScenario(t *testing.T) {
	ctx := context.Background()
	realms := repository.NewRealmRepository(setupSQLite(t))

	id, err := realms.Create(ctx, models.Record{"name": "EU-West", "description": "Europe cluster"})
	require.NoError(t, err)
	n, ok := id.(int64)
	require.True(t, ok, "auto-increment keys are int64, got %T", id)
	assert.Positive(t, n)

	record, err := realms.GetByID(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, n, record["id"])
	assert.Equal(t, "EU-West", record.String("name"))
	assert.Equal(t, "Europe cluster", record.String("description"))

	require.NoError(t, realms.Delete(ctx, n))

	_, err = realms.GetByID(ctx, n)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestSQLite_CreateReturnsFreshIDs(t *testing.T) {
	ctx := context.Background()
	locations := repository.NewLocationRepository(setupSQLite(t))

	seen := make(map[interface{}]bool)
	for _, name := range []string{"Berlin", "Paris", "Oslo"} {
		id, err := locations.Create(ctx, models.Record{"name": name})
		require.NoError(t, err)
		assert.False(t, seen[id], "id %v reused", id)
		seen[id] = true
	}

	// An explicit id is honoured and later auto ids move past it
	id, err := locations.Create(ctx, models.Record{"id": 50, "name": "Imported"})
	require.NoError(t, err)
	assert.Equal(t, int64(50), id)

	next, err := locations.Create(ctx, models.Record{"name": "After import"})
	require.NoError(t, err)
	assert.Greater(t, next.(int64), int64(50))

	_, err = locations.Create(ctx, models.Record{"id": 50, "name": "Clash"})
	assert.True(t, utils.IsDuplicateError(err))
}

func TestSQLite_Search(t *testing.T) {
	ctx := context.Background()
	realms := repository.NewRealmRepository(setupSQLite(t))

	alpha, err := realms.Create(ctx, models.Record{"name": "Alpha"})
	require.NoError(t, err)
	_, err = realms.Create(ctx, models.Record{"name": "omegA"})
	require.NoError(t, err)
	_, err = realms.Create(ctx, models.Record{"name": "Gamma", "description": "100% uptime"})
	require.NoError(t, err)

	records, err := realms.GetAll(ctx, models.ListOptions{Search: "pha"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, alpha, records[0]["id"])

	// Description is searched too and wildcards are literal
	records, err = realms.GetAll(ctx, models.ListOptions{Search: "0% UP"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Gamma", records[0].String("name"))

	records, err = realms.GetAll(ctx, models.ListOptions{Search: "%"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Non-ASCII letters match in their stored case
	ecole, err := realms.Create(ctx, models.Record{"name": "ÉCOLE Nord"})
	require.NoError(t, err)
	records, err = realms.GetAll(ctx, models.ListOptions{Search: "ÉCOLE n"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ecole, records[0]["id"])

	for _, search := range []string{"", "a", "pha", "zzz"} {
		all, err := realms.GetAll(ctx, models.ListOptions{Search: search})
		require.NoError(t, err)
		count, err := realms.GetCount(ctx, models.ListOptions{Search: search, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(len(all)), count, "search %q", search)
	}
}

func TestSQLite_Pagination(t *testing.T) {
	ctx := context.Background()
	realms := repository.NewRealmRepository(setupSQLite(t))

	for _, name := range []string{"r1", "r2", "r3", "r4", "r5"} {
		_, err := realms.Create(ctx, models.Record{"name": name})
		require.NoError(t, err)
	}

	page, err := realms.GetAll(ctx, models.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "r2", page[0].String("name"))
	assert.Equal(t, "r3", page[1].String("name"))

	tail, err := realms.GetAll(ctx, models.ListOptions{Offset: 3})
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "r4", tail[0].String("name"))
}

func TestSQLite_SoftDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	mail := repository.NewMailQueueRepository(setupSQLite(t))

	id, err := mail.Create(ctx, models.Record{
		"user_uuid": "5d3c7a8e-1b2f-4c3d-9e4f-0a1b2c3d4e5f",
		"subject":   "Welcome",
		"body":      "Hello",
	})
	require.NoError(t, err)

	contains := func(records []models.Record) bool {
		for _, r := range records {
			if r["id"] == id {
				return true
			}
		}
		return false
	}

	require.NoError(t, mail.SoftDelete(ctx, id))

	visible, err := mail.GetAll(ctx, models.ListOptions{})
	require.NoError(t, err)
	assert.False(t, contains(visible))

	all, err := mail.GetAll(ctx, models.ListOptions{IncludeDeleted: true})
	require.NoError(t, err)
	assert.True(t, contains(all))

	// Still reachable by id
	record, err := mail.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "true", record.String("deleted"))
	assert.Equal(t, "Welcome", record.String("subject"))

	require.NoError(t, mail.Restore(ctx, id))

	visible, err = mail.GetAll(ctx, models.ListOptions{})
	require.NoError(t, err)
	assert.True(t, contains(visible))
}

func TestSQLite_UpdateKeepsPrimaryKey(t *testing.T) {
	ctx := context.Background()
	realms := repository.NewRealmRepository(setupSQLite(t))

	id, err := realms.Create(ctx, models.Record{"name": "Before"})
	require.NoError(t, err)

	updated, err := realms.Update(ctx, id, models.Record{"id": 999, "name": "After"})
	require.NoError(t, err)
	assert.True(t, updated)

	record, err := realms.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "After", record.String("name"))

	_, err = realms.GetByID(ctx, 999)
	assert.True(t, utils.IsNotFoundError(err))

	// Writing identical values still reports success
	updated, err = realms.Update(ctx, id, models.Record{"name": "After"})
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestSQLite_GetByIDs(t *testing.T) {
	ctx := context.Background()
	realms := repository.NewRealmRepository(setupSQLite(t))

	a, err := realms.Create(ctx, models.Record{"name": "A"})
	require.NoError(t, err)
	b, err := realms.Create(ctx, models.Record{"name": "B"})
	require.NoError(t, err)

	result, err := realms.GetByIDs(ctx, []interface{}{a, b, int64(12345)})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "A", result[a].String("name"))
	assert.Equal(t, "B", result[b].String("name"))
}
