package main

import (
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// pageFlags carries the paging flags that are rejected rather than clamped
type pageFlags struct {
	Offset int `db:"offset" validate:"gte=0"`
}

func newListCmd() *cobra.Command {
	var opts models.ListOptions

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List the records of an entity",
		Long: `List prints one page of records in the entity's default order along
with the total number of matching records.

Entities: ` + entityArg() + `

Example:
  panelstore list realm --search eu --limit 10
  panelstore list mail-queue --include-deleted`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := entityRepository(args[0])
			if err != nil {
				return err
			}
			if err := utils.ValidateStruct(pageFlags{Offset: opts.Offset}); err != nil {
				return err
			}
			opts.Limit = pageSize(opts.Limit)

			records, err := repo.GetAll(cmd.Context(), opts)
			if err != nil {
				return err
			}
			total, err := repo.GetCount(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return utils.WritePaginated(out(cmd), present(repo, records...), opts.Limit, opts.Offset, total)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "Case-insensitive text to look for in the searchable columns")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Page size (default 20, at most 100)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of records to skip")
	cmd.Flags().BoolVar(&opts.IncludeDeleted, "include-deleted", false, "Also list soft-deleted records")
	return cmd
}

func newCountCmd() *cobra.Command {
	var opts models.ListOptions

	cmd := &cobra.Command{
		Use:   "count <entity>",
		Short: "Count the records of an entity",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := entityRepository(args[0])
			if err != nil {
				return err
			}

			total, err := repo.GetCount(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return utils.WriteJSON(out(cmd), map[string]int64{"count": total})
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "Case-insensitive text to look for in the searchable columns")
	cmd.Flags().BoolVar(&opts.IncludeDeleted, "include-deleted", false, "Also count soft-deleted records")
	return cmd
}
