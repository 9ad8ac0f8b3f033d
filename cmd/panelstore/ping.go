package main

import (
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/utils"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the database answers",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pool.HealthCheck(cmd.Context()); err != nil {
				return utils.NewPersistenceError("health check", err)
			}
			return utils.WriteJSON(out(cmd), map[string]string{
				"driver": pool.Dialect.String(),
				"status": "ok",
			})
		},
	}
}
