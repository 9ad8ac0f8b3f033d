// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names, column names, and flag values. These constants keep the
// entity descriptors, migrations and seeds pointed at the same schema.
package constants

// Table Names define the names of database tables managed by panelstore.
const (
	// TableChatMessages stores chatbot conversation messages.
	TableChatMessages = "featherpanel_chatbot_messages"

	// TableLocations stores node locations.
	TableLocations = "featherpanel_locations"

	// TableMailQueue stores queued outgoing mail.
	TableMailQueue = "featherpanel_mail_queue"

	// TableOidcProviders stores configured OpenID Connect providers.
	TableOidcProviders = "featherpanel_oidc_providers"

	// TableRealms stores realms (server categories).
	TableRealms = "featherpanel_realms"

	// TableMigrations tracks executed schema migrations.
	TableMigrations = "panelstore_migrations"

	// TableSeeds tracks executed seeds.
	TableSeeds = "panelstore_seeds"
)

// Common Column Names define frequently used database column names.
const (
	// ColumnID is the generic auto-increment primary key column name.
	ColumnID = "id"

	// ColumnUUID is the primary key column for entities keyed by a generated UUID.
	ColumnUUID = "uuid"

	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnCreatedAt   = "created_at"
	ColumnUpdatedAt   = "updated_at"

	// ColumnConversationID links a chat message to its conversation.
	ColumnConversationID = "conversation_id"
	ColumnRole           = "role"
	ColumnContent        = "content"
	ColumnModel          = "model"

	ColumnFlagCode = "flag_code"
	ColumnLogo     = "logo"
	ColumnAuthor   = "author"

	ColumnUserUUID = "user_uuid"
	ColumnSubject  = "subject"
	ColumnBody     = "body"
	ColumnStatus   = "status"
	ColumnLocked   = "locked"
	ColumnDeleted  = "deleted"

	ColumnIssuerURL            = "issuer_url"
	ColumnClientID             = "client_id"
	ColumnClientSecret         = "client_secret"
	ColumnScopes               = "scopes"
	ColumnEmailClaim           = "email_claim"
	ColumnSubjectClaim         = "subject_claim"
	ColumnGroupClaim           = "group_claim"
	ColumnGroupValue           = "group_value"
	ColumnAutoProvision        = "auto_provision"
	ColumnRequireEmailVerified = "require_email_verified"
	ColumnEnabled              = "enabled"
)

// Flag values. The panel schema stores boolean-like columns as the strings
// 'true' and 'false'.
const (
	FlagTrue  = "true"
	FlagFalse = "false"
)

// Mail queue status values.
const (
	MailStatusPending = "pending"
	MailStatusSent    = "sent"
	MailStatusFailed  = "failed"
)

// Database drivers accepted in configuration.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// PostgreSQL connection string parameters
const (
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
)
