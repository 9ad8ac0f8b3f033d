package models

import "github.com/featherpanel/panelstore/internal/constants"

// LocationDescriptor describes the physical locations nodes are grouped by.
// Locations accept caller-chosen ids so existing panels can be migrated
// without renumbering.
func LocationDescriptor() *EntityDescriptor {
	return &EntityDescriptor{
		Name:       "Location",
		Table:      constants.TableLocations,
		PrimaryKey: constants.ColumnID,
		KeyKind:    KeyAutoIncrement,
		Fields: []string{
			constants.ColumnName,
			constants.ColumnDescription,
			constants.ColumnFlagCode,
			constants.ColumnCreatedAt,
			constants.ColumnUpdatedAt,
		},
		Required: []string{constants.ColumnName},
		Rules: map[string]string{
			constants.ColumnName:     "max=255",
			constants.ColumnFlagCode: "max=10",
		},
		SearchColumns:   []string{constants.ColumnName, constants.ColumnDescription},
		OrderBy:         constants.ColumnID + " ASC",
		CreatedAtColumn: constants.ColumnCreatedAt,
		UpdatedAtColumn: constants.ColumnUpdatedAt,
		AllowExplicitID: true,
	}
}
