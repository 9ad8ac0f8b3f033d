package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/utils"
	"github.com/featherpanel/panelstore/migrations"
	"github.com/featherpanel/panelstore/scripts"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the missing tables",
		Long: `Migrate creates every missing entity table and records the migrations
it ran. Tables that already exist are left untouched, so running it again
is safe. With --status it only reports which migrations are recorded.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator := migrations.NewMigrator(pool)

			if status {
				recorded, err := migrator.Status(cmd.Context())
				if err != nil {
					return err
				}
				return utils.WriteJSON(out(cmd), recorded)
			}

			result, err := migrator.RunMigrations(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Msgf("Applied %s", utils.Plural(int64(result.Run), "migration"))
			return utils.WriteJSON(out(cmd), result)
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Only report which migrations are recorded")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default location and realm",
		Long: `Seed runs every seed that has not run yet. Seeds skip records whose
name already exists, so hand-made defaults are kept.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if migrate {
				if _, err := migrations.NewMigrator(pool).RunMigrations(cmd.Context()); err != nil {
					return err
				}
			}

			ran, err := scripts.NewSeeder(pool, repos).SeedDatabase(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Msgf("Ran %s", utils.Plural(int64(ran), "seed"))
			return utils.WriteJSON(out(cmd), map[string]int{"seeds_run": ran})
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run migrations first")
	return cmd
}
