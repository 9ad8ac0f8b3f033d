package main

import (
	"github.com/spf13/cobra"

	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// entityInfo describes one entity for the entities command
type entityInfo struct {
	Name          string   `json:"name"`
	Table         string   `json:"table"`
	PrimaryKey    string   `json:"primary_key"`
	GeneratedKey  bool     `json:"generated_key"`
	Fields        []string `json:"fields"`
	Required      []string `json:"required"`
	SearchColumns []string `json:"search_columns"`
	OrderBy       string   `json:"order_by"`
	SoftDelete    bool     `json:"soft_delete"`
}

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "entities",
		Short:       "List the stored entities and their columns",
		Args:        exactArgs(0),
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return utils.WriteJSON(out(cmd), describeEntities())
		},
	}
}

func describeEntities() []entityInfo {
	descriptors := models.Descriptors()
	infos := make([]entityInfo, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, entityInfo{
			Name:          d.Name,
			Table:         d.Table,
			PrimaryKey:    d.PK(),
			GeneratedKey:  d.KeyKind == models.KeyGenerated,
			Fields:        d.Fields,
			Required:      d.Required,
			SearchColumns: d.SearchColumns,
			OrderBy:       d.Ordering(),
			SoftDelete:    d.SoftDelete != nil,
		})
	}
	return infos
}
