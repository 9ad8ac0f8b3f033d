package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/config"
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/repository"
	"github.com/featherpanel/panelstore/internal/utils"
)

// offlineAnnotation marks commands that never touch the database.
const offlineAnnotation = "offline"

var (
	// configPath is set by the --config flag.
	configPath string

	// logLevel overrides the configured log level when set.
	logLevel string

	// cfg, pool and repos are initialized before every database command.
	cfg   *config.AppConfig
	pool  *database.Pool
	repos *repository.Repositories
)

// newRootCmd builds the command tree. A fresh tree per run keeps flag
// values from leaking between invocations.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "panelstore",
		Short: "Manage the panel's stored entities",
		Long: `panelstore creates and seeds the panel schema and reads and writes
chat messages, locations, the mail queue, OIDC providers and realms.

Entities are named case-insensitively by entity or table name, e.g.
realm, featherpanel_realms or mail-queue.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: openStore,
	}

	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return utils.NewBadRequestError(err.Error())
	})

	root.AddCommand(
		newVersionCmd(),
		newEntitiesCmd(),
		newPingCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newListCmd(),
		newCountCmd(),
		newGetCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newRestoreCmd(),
	)

	return root
}

// openStore loads the configuration, initializes logging and connects to the database
func openStore(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[offlineAnnotation] == "true" || cmd.Name() == "help" {
		return nil
	}
	closeStore()

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if version != "dev" {
		loaded.App.Version = version
	}

	// stdout carries the JSON output, so logs go to stderr
	utils.InitLoggerWithWriter(loaded, cmd.ErrOrStderr())
	if logLevel != "" {
		if err := utils.SetLogLevel(logLevel); err != nil {
			return utils.NewBadRequestError(err.Error())
		}
	}
	utils.InitValidator()

	db, err := database.Connect(loaded)
	if err != nil {
		return err
	}

	cfg = loaded
	pool = db
	repos = repository.NewRepositories(pool, utils.NewSealer(cfg.Secrets.EncryptionKey, cfg.Secrets.Salt))

	log.Debug().
		Str("command", cmd.CommandPath()).
		Str("log_level", utils.GetLogLevel()).
		Msg("Store opened")
	return nil
}

// closeStore releases the connection pool, if one is open
func closeStore() {
	if pool != nil {
		pool.Close()
	}
	cfg, pool, repos = nil, nil, nil
}

// exactArgs wraps cobra.ExactArgs so argument mistakes report as usage errors
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return utils.NewBadRequestError(err.Error())
		}
		return nil
	}
}
