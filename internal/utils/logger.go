package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/featherpanel/panelstore/internal/config"
	"github.com/featherpanel/panelstore/internal/constants"
)

// sensitiveQueryMarkers flag statements whose string arguments must not be logged.
var sensitiveQueryMarkers = []string{"secret", "token", "password"}

// InitLogger initializes the application logger with the given configuration
func InitLogger(cfg *config.AppConfig) {
	InitLoggerWithWriter(cfg, os.Stdout)
}

// InitLoggerWithWriter initializes the application logger, writing to out
func InitLoggerWithWriter(cfg *config.AppConfig, out io.Writer) {
	// Set global log level
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		// Default to info level if invalid
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure logger output format
	output := out
	if strings.ToLower(cfg.Logging.Format) == "console" && !cfg.App.IsProduction() {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    out != os.Stdout,
		}
	}

	// Set global logger
	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("app", cfg.App.Name).
		Str("version", cfg.App.Version).
		Str("env", cfg.App.Environment).
		Logger()

	log.Debug().Msg("Logger initialized")
}

// LogError logs an error with context information
func LogError(err error, context map[string]interface{}) {
	event := log.Error().Err(err)

	// Add context information
	for key, value := range context {
		switch v := value.(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		default:
			event = event.Interface(key, v)
		}
	}

	event.Msg("Error occurred")
}

// LogDBQuery logs a database query for debugging
func LogDBQuery(query string, args []interface{}, duration time.Duration, err error) {
	event := log.Debug()
	if err != nil {
		event = log.Error().Err(err)
	}

	event.
		Str("query", query).
		Interface("args", RedactQueryArgs(query, args)).
		Dur("duration", duration).
		Msg("Database query executed")
}

// RedactQueryArgs masks string arguments of statements touching secret columns.
func RedactQueryArgs(query string, args []interface{}) []interface{} {
	lowered := strings.ToLower(query)
	sensitive := false
	for _, marker := range sensitiveQueryMarkers {
		if strings.Contains(lowered, marker) {
			sensitive = true
			break
		}
	}

	safeArgs := make([]interface{}, len(args))
	for i, arg := range args {
		if _, ok := arg.(string); ok && sensitive {
			safeArgs[i] = constants.LogRedactedValue
			continue
		}
		safeArgs[i] = arg
	}
	return safeArgs
}

// LogEntityEvent logs a successful write against an entity
func LogEntityEvent(entity, action string, id interface{}) {
	log.Info().
		Str("entity", entity).
		Str("action", action).
		Interface("id", id).
		Msg("Entity " + action)
}

// GetLogLevel returns the current global log level as a string
func GetLogLevel() string {
	return zerolog.GlobalLevel().String()
}

// SetLogLevel updates the global log level
func SetLogLevel(level string) error {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", level)
	}

	zerolog.SetGlobalLevel(parsedLevel)
	log.Info().Str("level", parsedLevel.String()).Msg("Log level changed")

	return nil
}
