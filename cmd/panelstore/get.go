package main

import (
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/utils"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Print one record",
		Long: `Get prints the record with the given primary key. Soft-deleted records
are still returned.

Example:
  panelstore get realm 1
  panelstore get oidc-provider 0b6d5f0e-3c1a-4f4e-9a55-2f1d7f3f8b21`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := entityRepository(args[0])
			if err != nil {
				return err
			}

			record, err := repo.GetByID(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return utils.WriteJSON(out(cmd), present(repo, record)[0])
		},
	}
}
