// Package inbox implements the inbox synchronization engine: a
// cache-first, probe-filtered reconciliation of the local conversation
// list against the authoritative server-side one.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gatherly-app/gatherly/internal/api"
	"github.com/gatherly-app/gatherly/internal/domain"
	"github.com/gatherly-app/gatherly/internal/repository"
	"github.com/gatherly-app/gatherly/internal/session"
)

const defaultProbeTimeout = 10 * time.Second

// SyncOptions controls one sync cycle. ShowLoading only indicates whether
// the caller intends to show a blocking spinner; it has no effect on the
// cycle itself.
type SyncOptions struct {
	ShowLoading bool
}

// Update is delivered to subscribers whenever a cycle commits a new list
// for a user, or a delete changes it.
type Update struct {
	UserID        string
	Conversations []domain.Conversation
}

// UpdateHandler receives committed list updates. Handlers run on the
// committing goroutine, serialized per coordinator; they should return
// quickly and must not call back into the coordinator synchronously.
type UpdateHandler func(Update)

// generations sequences overlapping sync cycles for one user. A cycle
// takes a generation number at start; a commit whose generation is older
// than the last committed one is dropped, so a slow early cycle can no
// longer overwrite a fresh later result. Subscriber deliveries carry the
// same watermark, so the last update a subscriber sees is never a
// superseded one.
type generations struct {
	next      uint64
	committed uint64
	notified  uint64
}

// Coordinator orchestrates full sync cycles: fetch the candidate list,
// filter it through concurrent authorization probes, sort, and publish to
// the session cache and the durable store.
type Coordinator struct {
	client       api.Client
	cache        *session.Cache
	store        repository.ConversationStore
	log          *slog.Logger
	probeTimeout time.Duration

	genMu sync.Mutex
	gens  map[string]*generations

	subMu  sync.RWMutex
	nextID int
	subs   map[int]UpdateHandler

	// notifyMu serializes subscriber deliveries
	notifyMu sync.Mutex

	// spawn runs background work; replaced in tests to run inline
	spawn func(func())
}

type CoordinatorOption func(*Coordinator)

// WithProbeTimeout bounds each individual authorization probe. A probe
// that exceeds it counts as a denial for that cycle.
func WithProbeTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.probeTimeout = d
	}
}

func NewCoordinator(client api.Client, cache *session.Cache, store repository.ConversationStore, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		client:       client,
		cache:        cache,
		store:        store,
		log:          logger,
		probeTimeout: defaultProbeTimeout,
		gens:         make(map[string]*generations),
		subs:         make(map[int]UpdateHandler),
		spawn:        func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PrimeFromCache returns the user's last committed list when a full sync
// has already completed this session, so a screen can render immediately
// with no loading state. It always schedules a background soft sync to
// reconcile out-of-band changes; the caller is never blocked on it.
//
// The second return is false when the user has never been loaded this
// session; the caller should fall back to a blocking Sync.
func (c *Coordinator) PrimeFromCache(userID string) ([]domain.Conversation, bool) {
	if !c.cache.HasLoaded(userID) {
		return nil, false
	}
	cached := sortConversations(c.cache.Cached(userID))

	c.spawn(func() {
		if _, err := c.Sync(context.Background(), userID, SyncOptions{ShowLoading: false}); err != nil {
			c.log.Warn("background inbox refresh failed", "userId", userID, "error", err)
		}
	})

	return cached, true
}

// Sync runs one full cycle for the user and returns the authorized,
// sorted list. Only a failure of the top-level list fetch is returned as
// an error, and it leaves all prior state untouched. Probe denials shrink
// the result silently; a durable-store write failure is logged and
// otherwise ignored.
func (c *Coordinator) Sync(ctx context.Context, userID string, opts SyncOptions) ([]domain.Conversation, error) {
	gen := c.begin(userID)
	log := c.log.With("userId", userID, "generation", gen)
	log.Debug("starting inbox sync", "showLoading", opts.ShowLoading)

	candidates, err := c.client.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation list: %w", err)
	}

	// An empty authoritative result is not a failure: it must clear any
	// stale cached entries, so it flows through the commit below.
	candidates = dedupeConversations(candidates)

	var authorized []domain.Conversation
	if len(candidates) > 0 {
		var denied []probeOutcome
		authorized, denied = c.runProbes(ctx, candidates)
		for _, d := range denied {
			log.Debug("conversation excluded by authorization probe",
				"conversationId", d.conversation.ID, "error", d.err)
		}
	}

	result := sortConversations(authorized)
	if result == nil {
		result = []domain.Conversation{}
	}

	if !c.commit(userID, gen, result) {
		log.Debug("dropping stale sync result", "conversations", len(result))
		return result, nil
	}

	// Fire and forget: the in-memory cache stays the source of truth for
	// the session even if persistence fails.
	persisted := make([]domain.Conversation, len(result))
	copy(persisted, result)
	c.spawn(func() {
		if err := c.store.ReplaceAll(context.Background(), userID, persisted); err != nil {
			log.Warn("failed to persist conversations", "error", err)
		}
	})

	log.Debug("inbox sync committed",
		"candidates", len(candidates), "authorized", len(result))
	c.notifyCommitted(userID, gen, result)

	return result, nil
}

// SyncLocalFallback serves the inbox from the durable local store, sorted
// but with no authorization filtering: the local store only ever contains
// conversations the device already had legitimate access to. Used when
// there is no authenticated session or the network is unavailable.
func (c *Coordinator) SyncLocalFallback(ctx context.Context, userID string) ([]domain.Conversation, error) {
	conversations, err := c.store.FetchLocal(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read local conversations: %w", err)
	}
	return sortConversations(dedupeConversations(conversations)), nil
}

// Delete removes a conversation server-side, then drops it from the
// session cache and the durable store. On transport failure nothing is
// mutated locally. Deleting an id absent from the current list is a
// no-op locally.
func (c *Coordinator) Delete(ctx context.Context, userID string, conversationID string) error {
	if err := c.client.DeleteConversation(ctx, conversationID); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", conversationID, err)
	}

	c.cache.Remove(userID, conversationID)
	if err := c.store.Delete(ctx, userID, conversationID); err != nil {
		c.log.Warn("failed to delete conversation locally",
			"userId", userID, "conversationId", conversationID, "error", err)
	}

	c.notify(Update{
		UserID:        userID,
		Conversations: sortConversations(c.cache.Cached(userID)),
	})
	return nil
}

// Subscribe registers a handler for committed list updates and returns a
// function that removes the subscription.
func (c *Coordinator) Subscribe(handler UpdateHandler) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = handler

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Coordinator) notify(update Update) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.fanout(update)
}

// notifyCommitted delivers a sync cycle's update in commit order. The
// notified watermark drops a delivery whose cycle has already been
// superseded by a fresher delivered one, so overlapping cycles cannot
// leave a subscriber holding the stale list.
func (c *Coordinator) notifyCommitted(userID string, gen uint64, result []domain.Conversation) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.genMu.Lock()
	g := c.gens[userID]
	if gen < g.notified {
		c.genMu.Unlock()
		return
	}
	g.notified = gen
	c.genMu.Unlock()

	c.fanout(Update{UserID: userID, Conversations: result})
}

func (c *Coordinator) fanout(update Update) {
	c.subMu.RLock()
	handlers := make([]UpdateHandler, 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	c.subMu.RUnlock()

	for _, h := range handlers {
		h(update)
	}
}

func (c *Coordinator) begin(userID string) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()

	g, ok := c.gens[userID]
	if !ok {
		g = &generations{}
		c.gens[userID] = g
	}
	g.next++
	return g.next
}

// commit publishes a cycle's result to the session cache. The generation
// check and the cache write happen under one lock, so a cycle superseded
// by a later one can never overwrite the fresher state, regardless of how
// the two cycles interleave.
func (c *Coordinator) commit(userID string, gen uint64, result []domain.Conversation) bool {
	c.genMu.Lock()
	defer c.genMu.Unlock()

	g := c.gens[userID]
	if gen < g.committed {
		return false
	}
	g.committed = gen

	c.cache.SetCached(userID, result)
	c.cache.MarkLoaded(userID)
	return true
}
