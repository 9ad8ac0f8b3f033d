package models

import "github.com/featherpanel/panelstore/internal/constants"

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// ChatMessageDescriptor describes messages exchanged with the panel chatbot.
// Messages belong to a conversation and are read back in the order they were written.
func ChatMessageDescriptor() *EntityDescriptor {
	return &EntityDescriptor{
		Name:       "ChatMessage",
		Table:      constants.TableChatMessages,
		PrimaryKey: constants.ColumnID,
		KeyKind:    KeyAutoIncrement,
		Fields: []string{
			constants.ColumnConversationID,
			constants.ColumnRole,
			constants.ColumnContent,
			constants.ColumnModel,
			constants.ColumnCreatedAt,
		},
		Required: []string{
			constants.ColumnConversationID,
			constants.ColumnRole,
			constants.ColumnContent,
		},
		Rules: map[string]string{
			constants.ColumnRole:  "oneof=" + ChatRoleUser + " " + ChatRoleAssistant + " " + ChatRoleSystem,
			constants.ColumnModel: "max=255",
		},
		SearchColumns:   []string{constants.ColumnContent},
		OrderBy:         constants.ColumnCreatedAt + " ASC, " + constants.ColumnID + " ASC",
		CreatedAtColumn: constants.ColumnCreatedAt,
	}
}
