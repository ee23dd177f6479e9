// Package session holds the process-lifetime, per-user cache of the last
// known authoritative conversation list. It is never persisted; durable
// storage is the conversation store's job.
package session

import (
	"sync"

	"github.com/gatherly-app/gatherly/internal/domain"
)

type entry struct {
	conversations []domain.Conversation
	loaded        bool
}

// Cache is safe for concurrent use. Reads return snapshot copies, never
// live references, so multiple screens can read the same user's entry
// without coordination.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
	}
}

// HasLoaded reports whether a full authoritative sync has completed for
// this user since process start.
func (c *Cache) HasLoaded(userID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	return ok && e.loaded
}

// Cached returns the last stored list, or an empty slice if none.
func (c *Cache) Cached(userID string) []domain.Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok {
		return nil
	}
	out := make([]domain.Conversation, len(e.conversations))
	copy(out, e.conversations)
	return out
}

// SetCached replaces the stored list wholesale.
func (c *Cache) SetCached(userID string, conversations []domain.Conversation) {
	stored := make([]domain.Conversation, len(conversations))
	copy(stored, conversations)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(userID).conversations = stored
}

// MarkLoaded sets the loaded flag; idempotent.
func (c *Cache) MarkLoaded(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(userID).loaded = true
}

// Remove drops a single conversation from the user's cached list. Removing
// an id that is not present is a no-op.
func (c *Cache) Remove(userID string, conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok {
		return
	}
	kept := e.conversations[:0]
	for _, conv := range e.conversations {
		if conv.ID != conversationID {
			kept = append(kept, conv)
		}
	}
	e.conversations = kept
}

func (c *Cache) ensure(userID string) *entry {
	e, ok := c.entries[userID]
	if !ok {
		e = &entry{}
		c.entries[userID] = e
	}
	return e
}
