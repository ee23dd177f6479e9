package inbox

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gatherly-app/gatherly/internal/domain"
	"github.com/gatherly-app/gatherly/internal/events"
)

// Engine is the screen-facing shell around the Coordinator. One Engine is
// constructed per process and handed to each role screen's controller; it
// holds the active session, wires the invalidation bus, and chooses
// between the authoritative sync path and the local-only fallback.
type Engine struct {
	coordinator *Coordinator
	bus         *events.Bus
	log         *slog.Logger

	mu            sync.RWMutex
	userID        string
	authenticated bool

	unsubscribes []func()

	// spawn runs invalidation-triggered syncs; replaced in tests
	spawn func(func())
}

func NewEngine(coordinator *Coordinator, bus *events.Bus, logger *slog.Logger) *Engine {
	e := &Engine{
		coordinator: coordinator,
		bus:         bus,
		log:         logger,
		spawn:       func(f func()) { go f() },
	}

	// Every invalidation topic is a pure trigger: the engine re-derives
	// full state via a sync cycle rather than merging partial updates.
	e.unsubscribes = append(e.unsubscribes,
		bus.Subscribe(events.KindRefreshInbox, func(ev events.Event) {
			blocking := false
			if refresh, ok := ev.(events.RefreshInboxEvent); ok {
				blocking = refresh.Blocking
			}
			e.invalidate(ev.Kind(), blocking)
		}),
		bus.Subscribe(events.KindMessageUpserted, func(ev events.Event) {
			e.invalidate(ev.Kind(), false)
		}),
		bus.Subscribe(events.KindMessageSavedLocally, func(ev events.Event) {
			e.invalidate(ev.Kind(), false)
		}),
	)
	return e
}

// SetSession records the current user. A session without authentication
// (no token) reads the local store only and never syncs.
func (e *Engine) SetSession(userID string, authenticated bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userID = userID
	e.authenticated = authenticated
}

// ClearSession drops the active session, e.g. on sign-out.
func (e *Engine) ClearSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userID = ""
	e.authenticated = false
}

func (e *Engine) session() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.userID, e.authenticated
}

// Load is the screen-mount entry point. With a warm session cache it
// returns immediately from memory (fromCache true, render with no
// spinner) while a soft sync reconciles in the background; on a cold
// cache it runs a blocking sync; without an authenticated session it
// serves the local fallback.
func (e *Engine) Load(ctx context.Context) (conversations []domain.Conversation, fromCache bool, err error) {
	userID, authenticated := e.session()

	if !authenticated {
		conversations, err = e.coordinator.SyncLocalFallback(ctx, userID)
		return conversations, false, err
	}

	if cached, ok := e.coordinator.PrimeFromCache(userID); ok {
		return cached, true, nil
	}

	conversations, err = e.coordinator.Sync(ctx, userID, SyncOptions{ShowLoading: true})
	return conversations, false, err
}

// Refresh runs a sync for the active session. Used by pull-to-refresh
// style surfaces that want to block on the result.
func (e *Engine) Refresh(ctx context.Context, showLoading bool) ([]domain.Conversation, error) {
	userID, authenticated := e.session()
	if !authenticated {
		return e.coordinator.SyncLocalFallback(ctx, userID)
	}
	return e.coordinator.Sync(ctx, userID, SyncOptions{ShowLoading: showLoading})
}

// LoadLocal serves the inbox from the durable local store only, with no
// network access and no authorization filtering.
func (e *Engine) LoadLocal(ctx context.Context) ([]domain.Conversation, error) {
	userID, _ := e.session()
	return e.coordinator.SyncLocalFallback(ctx, userID)
}

// Delete removes a conversation for the active session.
func (e *Engine) Delete(ctx context.Context, conversationID string) error {
	userID, authenticated := e.session()
	if !authenticated {
		return domain.NotAuthenticatedError{}
	}
	return e.coordinator.Delete(ctx, userID, conversationID)
}

// Subscribe registers for committed list updates.
func (e *Engine) Subscribe(handler UpdateHandler) func() {
	return e.coordinator.Subscribe(handler)
}

// UnreadTotal sums the unread counts across the active user's cached
// list, for badge display.
func (e *Engine) UnreadTotal() int {
	userID, _ := e.session()
	total := 0
	for _, conv := range e.coordinator.cache.Cached(userID) {
		total += conv.UnreadCount
	}
	return total
}

// Close detaches the engine from the invalidation bus.
func (e *Engine) Close() {
	for _, unsubscribe := range e.unsubscribes {
		unsubscribe()
	}
	e.unsubscribes = nil
}

// invalidate handles one invalidation event: a soft sync for the active
// authenticated user. With no active session there is nothing to refresh;
// unauthenticated screens read the local fallback directly.
func (e *Engine) invalidate(kind events.Kind, blocking bool) {
	userID, authenticated := e.session()
	if !authenticated || userID == "" {
		return
	}

	e.spawn(func() {
		_, err := e.coordinator.Sync(context.Background(), userID,
			SyncOptions{ShowLoading: blocking})
		if err != nil {
			e.log.Warn("invalidation-triggered sync failed",
				"topic", kind.String(), "userId", userID, "error", err)
		}
	})
}
