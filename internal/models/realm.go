package models

import "github.com/featherpanel/panelstore/internal/constants"

// RealmDescriptor describes realms, the top-level grouping of server templates.
func RealmDescriptor() *EntityDescriptor {
	return &EntityDescriptor{
		Name:       "Realm",
		Table:      constants.TableRealms,
		PrimaryKey: constants.ColumnID,
		KeyKind:    KeyAutoIncrement,
		Fields: []string{
			constants.ColumnName,
			constants.ColumnDescription,
			constants.ColumnLogo,
			constants.ColumnAuthor,
			constants.ColumnCreatedAt,
			constants.ColumnUpdatedAt,
		},
		Required: []string{constants.ColumnName},
		Rules: map[string]string{
			constants.ColumnName:   "max=255",
			constants.ColumnAuthor: "max=255",
		},
		SearchColumns:   []string{constants.ColumnName, constants.ColumnDescription},
		OrderBy:         constants.ColumnID + " ASC",
		CreatedAtColumn: constants.ColumnCreatedAt,
		UpdatedAtColumn: constants.ColumnUpdatedAt,
	}
}
