// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the application.
// These constants provide sensible defaults for configuration settings and for the
// values the repositories fill in when a caller omits them.
package constants

import "time"

// Default Pagination Values define the parameters used for listing.
const (
	// DefaultPageSize is the default number of records returned by the CLI list command.
	DefaultPageSize = 20

	// MaxPageSize caps the page size accepted by the CLI list command.
	MaxPageSize = 100
)

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultDBDriver is the database driver used when none is configured.
	DefaultDBDriver = DriverMySQL

	// DefaultMySQLPort is the default MySQL/MariaDB port.
	DefaultMySQLPort = 3306

	// DefaultPostgresPort is the default PostgreSQL port.
	DefaultPostgresPort = 5432

	// DefaultSQLitePath is the database file used by the sqlite driver.
	DefaultSQLitePath = "panelstore.db"

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle connections kept open.
	DefaultDBMinConnections = 5

	// DefaultConnMaxLifetime is how long a pooled connection may be reused.
	DefaultConnMaxLifetime = time.Hour

	// DefaultConnMaxIdleTime is how long a pooled connection may sit idle.
	DefaultConnMaxIdleTime = 30 * time.Minute

	// DefaultConnectTimeout bounds the initial connect and ping.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultAppName is reported in every log line.
	DefaultAppName = "panelstore"
)

// Environment Types define the recognized application running environments.
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// OIDC provider defaults applied by CreateProvider when the caller omits a value.
const (
	DefaultOidcScopes       = "openid email profile"
	DefaultOidcEmailClaim   = "email"
	DefaultOidcSubjectClaim = "sub"
)

// Chat defaults.
const (
	// DefaultConversationHistory is the number of messages loaded for a conversation
	// when the caller passes a non-positive limit.
	DefaultConversationHistory = 50
)

// Secret sealing parameters (Argon2id key derivation).
const (
	SealKeyLength       = 32
	SealArgonTime       = 1
	SealArgonMemory     = 64 * 1024
	SealArgonThreads    = 2
	SealSaltDefault     = "panelstore/oidc-client-secret"
	SealedValuePrefix   = "enc:v1:"
	LogRedactedValue    = "[REDACTED]"
	MinEncryptionKeyLen = 16
)
