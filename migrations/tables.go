package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
)

// index is a secondary index created alongside its table
type index struct {
	name    string
	columns string
}

// createTable renders and runs CREATE TABLE plus its indexes.
// Column definitions must be portable across the supported dialects.
func createTable(ctx context.Context, tx *sql.Tx, d database.Dialect, table string, columns []string, indexes []index) error {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)%s",
		table, strings.Join(columns, ",\n\t"), tableOptions(d))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return err
	}

	// Only reached when the table was missing, so plain CREATE INDEX is safe
	for _, idx := range indexes {
		stmt := fmt.Sprintf("CREATE INDEX %s_%s ON %s (%s)", table, idx.name, table, idx.columns)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// timestampType is the column type for UTC timestamps
func timestampType(d database.Dialect) string {
	if d == database.DialectPostgres {
		return "TIMESTAMP"
	}
	return "DATETIME"
}

// flagColumn stores a 'true'/'false' string flag
func flagColumn(name string) string {
	return fmt.Sprintf("%s VARCHAR(5) NOT NULL DEFAULT '%s'", name, constants.FlagFalse)
}

func tableOptions(d database.Dialect) string {
	if d == database.DialectMySQL || d == "" {
		return " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"
	}
	return ""
}

// createRealmsTable creates the realms table
func createRealmsTable() Migration {
	return Migration{
		Name:        "create_realms_table",
		Description: "Creates the realms table",
		TableName:   constants.TableRealms,
		RunSQL: func(ctx context.Context, tx *sql.Tx, d database.Dialect) error {
			ts := timestampType(d)
			return createTable(ctx, tx, d, constants.TableRealms, []string{
				d.AutoIncrementKey(constants.ColumnID),
				"name VARCHAR(255) NOT NULL",
				"description TEXT NULL",
				"logo VARCHAR(255) NULL",
				"author VARCHAR(255) NULL",
				"created_at " + ts + " NULL",
				"updated_at " + ts + " NULL",
			}, []index{
				{name: "name_idx", columns: "name"},
			})
		},
	}
}

// createLocationsTable creates the locations table
func createLocationsTable() Migration {
	return Migration{
		Name:        "create_locations_table",
		Description: "Creates the node locations table",
		TableName:   constants.TableLocations,
		RunSQL: func(ctx context.Context, tx *sql.Tx, d database.Dialect) error {
			ts := timestampType(d)
			return createTable(ctx, tx, d, constants.TableLocations, []string{
				d.AutoIncrementKey(constants.ColumnID),
				"name VARCHAR(255) NOT NULL",
				"description TEXT NULL",
				"flag_code VARCHAR(10) NULL",
				"created_at " + ts + " NULL",
				"updated_at " + ts + " NULL",
			}, []index{
				{name: "name_idx", columns: "name"},
			})
		},
	}
}

// createMailQueueTable creates the outgoing mail queue table
func createMailQueueTable() Migration {
	return Migration{
		Name:        "create_mail_queue_table",
		Description: "Creates the outgoing mail queue table",
		TableName:   constants.TableMailQueue,
		RunSQL: func(ctx context.Context, tx *sql.Tx, d database.Dialect) error {
			ts := timestampType(d)
			return createTable(ctx, tx, d, constants.TableMailQueue, []string{
				d.AutoIncrementKey(constants.ColumnID),
				"user_uuid CHAR(36) NOT NULL",
				"subject VARCHAR(255) NOT NULL",
				"body TEXT NOT NULL",
				fmt.Sprintf("status VARCHAR(20) NOT NULL DEFAULT '%s'", constants.MailStatusPending),
				flagColumn(constants.ColumnLocked),
				flagColumn(constants.ColumnDeleted),
				"created_at " + ts + " NULL",
				"updated_at " + ts + " NULL",
			}, []index{
				{name: "user_uuid_idx", columns: "user_uuid"},
				{name: "pending_idx", columns: "status, locked, deleted"},
			})
		},
	}
}

// createOidcProvidersTable creates the OpenID Connect providers table
func createOidcProvidersTable() Migration {
	return Migration{
		Name:        "create_oidc_providers_table",
		Description: "Creates the OpenID Connect providers table",
		TableName:   constants.TableOidcProviders,
		RunSQL: func(ctx context.Context, tx *sql.Tx, d database.Dialect) error {
			ts := timestampType(d)
			return createTable(ctx, tx, d, constants.TableOidcProviders, []string{
				"uuid CHAR(36) NOT NULL PRIMARY KEY",
				"name VARCHAR(255) NOT NULL",
				"issuer_url VARCHAR(512) NOT NULL",
				"client_id VARCHAR(255) NOT NULL",
				"client_secret TEXT NOT NULL",
				fmt.Sprintf("scopes VARCHAR(255) NOT NULL DEFAULT '%s'", constants.DefaultOidcScopes),
				fmt.Sprintf("email_claim VARCHAR(100) NOT NULL DEFAULT '%s'", constants.DefaultOidcEmailClaim),
				fmt.Sprintf("subject_claim VARCHAR(100) NOT NULL DEFAULT '%s'", constants.DefaultOidcSubjectClaim),
				"group_claim VARCHAR(100) NULL",
				"group_value VARCHAR(255) NULL",
				flagColumn(constants.ColumnAutoProvision),
				flagColumn(constants.ColumnRequireEmailVerified),
				flagColumn(constants.ColumnEnabled),
				"created_at " + ts + " NULL",
				"updated_at " + ts + " NULL",
			}, []index{
				{name: "enabled_idx", columns: "enabled"},
			})
		},
	}
}

// createChatMessagesTable creates the chatbot messages table
func createChatMessagesTable() Migration {
	return Migration{
		Name:        "create_chatbot_messages_table",
		Description: "Creates the chatbot messages table",
		TableName:   constants.TableChatMessages,
		RunSQL: func(ctx context.Context, tx *sql.Tx, d database.Dialect) error {
			return createTable(ctx, tx, d, constants.TableChatMessages, []string{
				d.AutoIncrementKey(constants.ColumnID),
				"conversation_id BIGINT NOT NULL",
				"role VARCHAR(20) NOT NULL",
				"content TEXT NOT NULL",
				"model VARCHAR(255) NULL",
				"created_at " + timestampType(d) + " NULL",
			}, []index{
				{name: "conversation_idx", columns: "conversation_id, created_at"},
			})
		},
	}
}
