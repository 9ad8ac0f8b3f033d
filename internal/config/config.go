package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/featherpanel/panelstore/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App      AppSettings      `yaml:"app"`
	Database DatabaseSettings `yaml:"database"`
	Logging  LoggingSettings  `yaml:"logging"`
	Secrets  SecretSettings   `yaml:"secrets"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings contains database connection settings
type DatabaseSettings struct {
	Driver          string        `yaml:"driver" env:"DB_DRIVER"`
	Host            string        `yaml:"host" env:"DB_HOST"`
	Port            int           `yaml:"port" env:"DB_PORT"`
	Name            string        `yaml:"name" env:"DB_NAME"`
	User            string        `yaml:"user" env:"DB_USER"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	Path            string        `yaml:"path" env:"DB_PATH"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxConns        int           `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns        int           `yaml:"min_conns" env:"DB_MIN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// SecretSettings holds the key material used to seal stored secrets
// such as OIDC client secrets.
type SecretSettings struct {
	EncryptionKey string `yaml:"encryption_key" env:"PANEL_ENCRYPTION_KEY"`
	Salt          string `yaml:"salt" env:"PANEL_ENCRYPTION_SALT"`
}

// ConnectionString returns the driver specific data source name.
func (dbs *DatabaseSettings) ConnectionString() string {
	switch strings.ToLower(dbs.Driver) {
	case constants.DriverPostgres:
		sslMode := dbs.SSLMode
		if sslMode == "" {
			return fmt.Sprintf(
				"host=%s port=%d user=%s password=%s dbname=%s %s",
				dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name, constants.PostgresSSLDisable,
			)
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=15",
			dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name, sslMode,
		)

	case constants.DriverSQLite:
		return dbs.Path

	default:
		// MariaDB/MySQL connection string format: username:password@tcp(host:port)/dbname
		// clientFoundRows makes RowsAffected count matched rows, so an UPDATE that
		// writes identical values is not mistaken for a missing row.
		password := dbs.Password
		if password != "" {
			password = ":" + url.QueryEscape(password)
		}

		return fmt.Sprintf(
			"%s%s@tcp(%s:%d)/%s?parseTime=true&clientFoundRows=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
			dbs.User, password, dbs.Host, dbs.Port, dbs.Name,
		)
	}
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

var (
	// cfg holds the current application configuration
	cfg *AppConfig
)

// Load loads the configuration from a config file and environment variables
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		err = yaml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = config

	logConfig(config)

	return config, nil
}

// Get returns the current application configuration
func Get() *AppConfig {
	if cfg == nil {
		log.Fatal().Msg("configuration not loaded")
	}
	return cfg
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = constants.DefaultAppName
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	config.Database.Driver = strings.ToLower(config.Database.Driver)
	if config.Database.Driver == "" {
		config.Database.Driver = constants.DefaultDBDriver
	}
	if config.Database.Port == 0 {
		switch config.Database.Driver {
		case constants.DriverPostgres:
			config.Database.Port = constants.DefaultPostgresPort
		case constants.DriverMySQL:
			config.Database.Port = constants.DefaultMySQLPort
		}
	}
	if config.Database.Host == "" && config.Database.Driver != constants.DriverSQLite {
		config.Database.Host = "localhost"
	}
	if config.Database.Path == "" && config.Database.Driver == constants.DriverSQLite {
		config.Database.Path = constants.DefaultSQLitePath
	}
	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = constants.DefaultConnMaxLifetime
	}

	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	if config.Secrets.Salt == "" {
		config.Secrets.Salt = constants.SealSaltDefault
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	if env != constants.EnvDevelopment && env != constants.EnvTesting && env != constants.EnvProduction {
		log.Warn().Str("environment", config.App.Environment).Msg("Invalid environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	switch config.Database.Driver {
	case constants.DriverMySQL, constants.DriverPostgres:
		if config.Database.User == "" {
			return fmt.Errorf("database user must be set")
		}
		if config.Database.Name == "" {
			return fmt.Errorf("database name must be set")
		}
	case constants.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	if config.Database.MinConns > config.Database.MaxConns {
		return fmt.Errorf("database min_conns (%d) exceeds max_conns (%d)",
			config.Database.MinConns, config.Database.MaxConns)
	}

	// Sealed OIDC secrets cannot be recovered without a stable key
	if config.App.IsProduction() && len(config.Secrets.EncryptionKey) < constants.MinEncryptionKeyLen {
		return fmt.Errorf("encryption key must be at least %d characters in production", constants.MinEncryptionKeyLen)
	}

	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	log.Info().
		Str("environment", config.App.Environment).
		Str("version", config.App.Version).
		Str("db_driver", config.Database.Driver).
		Str("db_host", config.Database.Host).
		Int("db_port", config.Database.Port).
		Str("db_name", config.Database.Name).
		Bool("encryption_key_set", config.Secrets.EncryptionKey != "").
		Str("log_level", config.Logging.Level).
		Msg("Configuration loaded")
}
