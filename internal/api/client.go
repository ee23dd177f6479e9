package api

import (
	"context"

	"github.com/gatherly-app/gatherly/internal/domain"
)

// Client is the transport consumed by the inbox engine. Message delivery
// itself lives elsewhere; the engine only lists, probes, and deletes.
type Client interface {
	// ListConversations returns the authoritative conversation list for a
	// user. The listing alone does not guarantee the session may open any
	// given conversation.
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)

	// ListMessages returns one page of a conversation's history. The
	// engine calls it with page 1 as an authorization probe and discards
	// the payload.
	ListMessages(ctx context.Context, conversationID string, page int) ([]domain.Message, error)

	// DeleteConversation removes a conversation server-side.
	DeleteConversation(ctx context.Context, conversationID string) error
}
