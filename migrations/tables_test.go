package migrations

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
)

// createMockDBAndTx creates a mock database with an open transaction
func createMockDBAndTx(t *testing.T) (*sql.DB, *sql.Tx, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	cleanup := func() {
		tx.Rollback()
		db.Close()
	}

	return db, tx, mock, cleanup
}

func TestTableMigrations(t *testing.T) {
	tests := []struct {
		migration Migration
		name      string
		table     string
		indexes   int
	}{
		{migration: createRealmsTable(), name: "create_realms_table", table: constants.TableRealms, indexes: 1},
		{migration: createLocationsTable(), name: "create_locations_table", table: constants.TableLocations, indexes: 1},
		{migration: createMailQueueTable(), name: "create_mail_queue_table", table: constants.TableMailQueue, indexes: 2},
		{migration: createOidcProvidersTable(), name: "create_oidc_providers_table", table: constants.TableOidcProviders, indexes: 1},
		{migration: createChatMessagesTable(), name: "create_chatbot_messages_table", table: constants.TableChatMessages, indexes: 1},
	}

	dialects := []database.Dialect{database.DialectMySQL, database.DialectPostgres, database.DialectSQLite}

	for _, tt := range tests {
		for _, d := range dialects {
			t.Run(tt.name+"/"+d.String(), func(t *testing.T) {
				_, tx, mock, cleanup := createMockDBAndTx(t)
				defer cleanup()

				assert.Equal(t, tt.name, tt.migration.Name)
				assert.Equal(t, tt.table, tt.migration.TableName)

				mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + tt.table).
					WillReturnResult(sqlmock.NewResult(0, 0))
				for i := 0; i < tt.indexes; i++ {
					mock.ExpectExec("CREATE INDEX " + tt.table + "_").
						WillReturnResult(sqlmock.NewResult(0, 0))
				}

				err := tt.migration.RunSQL(context.Background(), tx, d)

				assert.NoError(t, err)
				assert.NoError(t, mock.ExpectationsWereMet())
			})
		}
	}
}

func TestCreateTable_DialectSpecifics(t *testing.T) {
	tests := []struct {
		dialect database.Dialect
		want    string
	}{
		{
			dialect: database.DialectMySQL,
			want: "CREATE TABLE IF NOT EXISTS t (\n\tid BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,\n\tcreated_at DATETIME NULL\n)" +
				" ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci",
		},
		{
			dialect: database.DialectPostgres,
			want:    "CREATE TABLE IF NOT EXISTS t (\n\tid BIGSERIAL PRIMARY KEY,\n\tcreated_at TIMESTAMP NULL\n)",
		},
		{
			dialect: database.DialectSQLite,
			want:    "CREATE TABLE IF NOT EXISTS t (\n\tid INTEGER PRIMARY KEY AUTOINCREMENT,\n\tcreated_at DATETIME NULL\n)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			_, tx, mock, cleanup := createMockDBAndTx(t)
			defer cleanup()

			mock.ExpectExec("^" + regexp.QuoteMeta(tt.want) + "$").
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX t_created_idx ON t (created_at)")).
				WillReturnResult(sqlmock.NewResult(0, 0))

			columns := []string{tt.dialect.AutoIncrementKey("id"), "created_at " + timestampType(tt.dialect) + " NULL"}
			err := createTable(context.Background(), tx, tt.dialect, "t", columns, []index{{name: "created_idx", columns: "created_at"}})

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFlagColumn(t *testing.T) {
	assert.Equal(t, "enabled VARCHAR(5) NOT NULL DEFAULT 'false'", flagColumn("enabled"))
}
