package models

import "github.com/featherpanel/panelstore/internal/constants"

// MailQueueDescriptor describes outgoing mail waiting for delivery.
// Entries are soft deleted through the deleted flag.
func MailQueueDescriptor() *EntityDescriptor {
	flag := "oneof=" + constants.FlagTrue + " " + constants.FlagFalse
	return &EntityDescriptor{
		Name:       "MailQueue",
		Table:      constants.TableMailQueue,
		PrimaryKey: constants.ColumnID,
		KeyKind:    KeyAutoIncrement,
		Fields: []string{
			constants.ColumnUserUUID,
			constants.ColumnSubject,
			constants.ColumnBody,
			constants.ColumnStatus,
			constants.ColumnLocked,
			constants.ColumnDeleted,
			constants.ColumnCreatedAt,
			constants.ColumnUpdatedAt,
		},
		Required: []string{
			constants.ColumnUserUUID,
			constants.ColumnSubject,
			constants.ColumnBody,
		},
		Rules: map[string]string{
			constants.ColumnUserUUID: "uuid",
			constants.ColumnSubject:  "max=255",
			constants.ColumnStatus:   "oneof=" + constants.MailStatusPending + " " + constants.MailStatusSent + " " + constants.MailStatusFailed,
			constants.ColumnLocked:   flag,
			constants.ColumnDeleted:  flag,
		},
		Flags: []string{constants.ColumnLocked, constants.ColumnDeleted},
		Defaults: map[string]interface{}{
			constants.ColumnStatus:  constants.MailStatusPending,
			constants.ColumnLocked:  constants.FlagFalse,
			constants.ColumnDeleted: constants.FlagFalse,
		},
		SearchColumns:   []string{constants.ColumnSubject, constants.ColumnBody},
		OrderBy:         constants.ColumnID + " ASC",
		CreatedAtColumn: constants.ColumnCreatedAt,
		UpdatedAtColumn: constants.ColumnUpdatedAt,
		SoftDelete: &SoftDelete{
			Column:       constants.ColumnDeleted,
			DeletedValue: constants.FlagTrue,
			ActiveValue:  constants.FlagFalse,
		},
	}
}
