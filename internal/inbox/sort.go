package inbox

import (
	"sort"

	"github.com/gatherly-app/gatherly/internal/domain"
)

// sortConversations orders newest-first by LastMessageTime, breaking ties
// by id so equal timestamps produce a deterministic order. Sorts in place
// and returns the slice for chaining.
func sortConversations(conversations []domain.Conversation) []domain.Conversation {
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		if !a.LastMessageTime.Equal(b.LastMessageTime) {
			return a.LastMessageTime.After(b.LastMessageTime)
		}
		return a.ID < b.ID
	})
	return conversations
}

// dedupeConversations collapses duplicate ids, keeping the last occurrence.
// Fetched lists may repeat a conversation across pagination boundaries
// upstream; last write wins.
func dedupeConversations(conversations []domain.Conversation) []domain.Conversation {
	index := make(map[string]int, len(conversations))
	out := make([]domain.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		if i, seen := index[conv.ID]; seen {
			out[i] = conv
			continue
		}
		index[conv.ID] = len(out)
		out = append(out, conv)
	}
	return out
}
