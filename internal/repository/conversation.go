package repository

import (
	"context"

	"github.com/gatherly-app/gatherly/internal/domain"
)

// ConversationStore is the durable local store of conversation summaries,
// keyed by the owning user. It is consulted when no network-authoritative
// data is available and written back after every successful sync.
type ConversationStore interface {
	// FetchLocal returns whatever was last durably saved for the user, in
	// no particular order.
	FetchLocal(ctx context.Context, userID string) ([]domain.Conversation, error)

	// ReplaceAll replaces the user's saved conversations wholesale.
	ReplaceAll(ctx context.Context, userID string, conversations []domain.Conversation) error

	// Delete removes a single conversation for the user. Deleting an id
	// that is not present is not an error.
	Delete(ctx context.Context, userID string, conversationID string) error
}
