package main

import (
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/utils"
)

func newDeleteCmd() *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete a record",
		Long: `Delete removes a record. Entities with a soft-delete flag are only
flagged, and restore brings them back; --hard removes the row instead.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := entityRepository(args[0])
			if err != nil {
				return err
			}

			soft := !hard && repo.Descriptor().SoftDelete != nil
			if soft {
				err = repo.SoftDelete(cmd.Context(), args[1])
			} else {
				err = repo.HardDelete(cmd.Context(), args[1])
			}
			if err != nil {
				return err
			}
			return utils.WriteJSON(out(cmd), map[string]bool{"deleted": true, "soft": soft})
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Remove the row even if the entity supports soft delete")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <entity> <id>",
		Short: "Restore a soft-deleted record",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := entityRepository(args[0])
			if err != nil {
				return err
			}

			if err := repo.Restore(cmd.Context(), args[1]); err != nil {
				return err
			}
			return utils.WriteJSON(out(cmd), map[string]bool{"restored": true})
		},
	}
}
