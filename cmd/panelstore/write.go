package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/utils"
)

func newCreateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create <entity> --data <json>",
		Short: "Create a record",
		Long: `Create stores a new record from a JSON object and prints its primary key.
Unknown keys are ignored. Pass --data - to read the object from stdin.

Example:
  panelstore create realm --data '{"name":"EU-West","description":"Europe"}'`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := entityRepository(args[0])
			if err != nil {
				return err
			}
			fields, err := readRecord(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			log.Debug().
				Str("entity", repo.Descriptor().Name).
				Interface("fields", utils.SanitizeKeys(fields)).
				Msg("Creating record")

			id, err := repo.Create(cmd.Context(), fields)
			if err != nil {
				return err
			}
			return utils.WriteJSON(out(cmd), map[string]interface{}{repo.Descriptor().PK(): id})
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON object with the record's columns, - for stdin")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update <entity> <id> --data <json>",
		Short: "Update a record",
		Long: `Update writes the columns of a JSON object to an existing record. The
primary key and unknown keys are ignored. An object without updatable
columns changes nothing and reports "updated": false.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := entityRepository(args[0])
			if err != nil {
				return err
			}
			changes, err := readRecord(data, cmd.InOrStdin())
			if err != nil {
				return err
			}
			log.Debug().
				Str("entity", repo.Descriptor().Name).
				Str("id", args[1]).
				Interface("changes", utils.SanitizeKeys(changes)).
				Msg("Updating record")

			updated, err := repo.Update(cmd.Context(), args[1], changes)
			if err != nil {
				return err
			}
			return utils.WriteJSON(out(cmd), map[string]bool{"updated": updated})
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON object with the columns to change, - for stdin")
	return cmd
}
