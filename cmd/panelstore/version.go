package main

import (
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/utils"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        exactArgs(0),
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return utils.WriteJSON(out(cmd), map[string]string{
				"version":    version,
				"commit":     commit,
				"build_date": buildDate,
			})
		},
	}
}
