package repository

import (
	"context"

	"github.com/featherpanel/panelstore/internal/constants"
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// ChatMessageRepository defines methods for interacting with chatbot messages
type ChatMessageRepository interface {
	EntityRepository

	CreateMessage(ctx context.Context, conversationID int64, role, content, model string) (int64, error)
	GetMessagesByConversation(ctx context.Context, conversationID int64, limit int) ([]models.Record, error)
	GetMessageCount(ctx context.Context, conversationID int64) (int64, error)
	DeleteMessagesByConversation(ctx context.Context, conversationID int64) (int64, error)
}

// SQLChatMessageRepository is the database/sql implementation of ChatMessageRepository
type SQLChatMessageRepository struct {
	EntityRepository
}

// NewChatMessageRepository creates a new ChatMessageRepository
func NewChatMessageRepository(db *database.Pool) ChatMessageRepository {
	return &SQLChatMessageRepository{
		EntityRepository: mustEntityRepository(db, models.ChatMessageDescriptor()),
	}
}

// CreateMessage appends a message to a conversation.
//
// Parameters:
//   - ctx: Context for the operation
//   - conversationID: The conversation the message belongs to
//   - role: One of user, assistant or system
//   - content: The message text
//   - model: The model that produced the message; empty for user messages
//
// Returns:
//   - The new message ID
//   - A validation error or a persistence error
func (r *SQLChatMessageRepository) CreateMessage(ctx context.Context, conversationID int64, role, content, model string) (int64, error) {
	if conversationID <= 0 {
		return 0, utils.NewValidationError(constants.ColumnConversationID, "Must be a positive integer")
	}

	fields := models.Record{
		constants.ColumnConversationID: conversationID,
		constants.ColumnRole:           role,
		constants.ColumnContent:        content,
	}
	if model != "" {
		fields[constants.ColumnModel] = model
	}

	id, err := r.Create(ctx, fields)
	if err != nil {
		return 0, err
	}
	newID, _ := models.ToInt64(id)
	return newID, nil
}

// GetMessagesByConversation returns the latest messages of a conversation,
// oldest first. A non-positive limit loads the default history length.
func (r *SQLChatMessageRepository) GetMessagesByConversation(ctx context.Context, conversationID int64, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = constants.DefaultConversationHistory
	}

	records, err := r.FindBy(ctx,
		r.conversation(conversationID),
		constants.ColumnCreatedAt+" DESC, "+constants.ColumnID+" DESC",
		limit,
	)
	if err != nil {
		return nil, err
	}

	// Newest N were fetched; hand them back in conversation order
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// GetMessageCount counts the messages of a conversation
func (r *SQLChatMessageRepository) GetMessageCount(ctx context.Context, conversationID int64) (int64, error) {
	return r.CountBy(ctx, r.conversation(conversationID))
}

// DeleteMessagesByConversation removes every message of a conversation and
// returns how many were removed
func (r *SQLChatMessageRepository) DeleteMessagesByConversation(ctx context.Context, conversationID int64) (int64, error) {
	deleted, err := r.DeleteBy(ctx, r.conversation(conversationID))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		utils.LogEntityEvent(r.Descriptor().Name, "conversation cleared", conversationID)
	}
	return deleted, nil
}

func (r *SQLChatMessageRepository) conversation(conversationID int64) []database.Predicate {
	return []database.Predicate{database.Eq{Column: constants.ColumnConversationID, Value: conversationID}}
}
