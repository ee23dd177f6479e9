package inbox

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatherly-app/gatherly/internal/domain"
	"github.com/gatherly-app/gatherly/internal/session"
)

var baseTime = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func conv(id string, minutesAgo int) domain.Conversation {
	return domain.Conversation{
		ID:              id,
		ParticipantID:   "p-" + id,
		ParticipantName: "Participant " + id,
		LastMessage:     "hello from " + id,
		LastMessageTime: baseTime.Add(-time.Duration(minutesAgo) * time.Minute),
		IsActive:        true,
	}
}

// newTestCoordinator runs background work inline so persistence and
// prime-triggered refreshes complete before assertions.
func newTestCoordinator(t *testing.T, client *fakeClient, store *fakeStore, opts ...CoordinatorOption) (*Coordinator, *session.Cache) {
	t.Helper()
	cache := session.NewCache()
	c := NewCoordinator(client, cache, store, testLogger(), opts...)
	c.spawn = func(f func()) { f() }
	return c, cache
}

func TestSyncFiltersUnauthorizedConversations(t *testing.T) {
	client := newFakeClient(conv("a", 1), conv("b", 2))
	client.probeErrs["b"] = errors.New("forbidden")
	c, cache := newTestCoordinator(t, client, newFakeStore())

	result, err := c.Sync(context.Background(), "u1", SyncOptions{ShowLoading: true})
	require.NoError(t, err)

	require.Len(t, result, 1)
	require.Equal(t, "a", result[0].ID)
	require.True(t, cache.HasLoaded("u1"))
	require.Equal(t, 2, client.probeCount())
}

func TestSyncSortsNewestFirstWithDeterministicTies(t *testing.T) {
	tied := conv("b", 5)
	tiedTwin := conv("a", 5)
	client := newFakeClient(tied, conv("d", 1), tiedTwin, conv("c", 60))
	c, _ := newTestCoordinator(t, client, newFakeStore())

	result, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)

	ids := make([]string, 0, len(result))
	for _, item := range result {
		ids = append(ids, item.ID)
	}
	require.Equal(t, []string{"d", "a", "b", "c"}, ids)

	for i := 1; i < len(result); i++ {
		require.False(t, result[i].LastMessageTime.After(result[i-1].LastMessageTime))
	}
}

func TestSyncDeduplicatesCandidatesLastWriteWins(t *testing.T) {
	stale := conv("a", 30)
	fresh := conv("a", 1)
	fresh.LastMessage = "newer"
	client := newFakeClient(stale, conv("b", 10), fresh)
	c, _ := newTestCoordinator(t, client, newFakeStore())

	result, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)

	require.Len(t, result, 2)
	require.Equal(t, "a", result[0].ID)
	require.Equal(t, "newer", result[0].LastMessage)
	// One probe per unique id
	require.Equal(t, 2, client.probeCount())
}

func TestSyncEmptyAuthoritativeResultClearsCache(t *testing.T) {
	client := newFakeClient(conv("a", 1))
	store := newFakeStore()
	c, cache := newTestCoordinator(t, client, store)

	_, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, cache.Cached("u1"))

	client.setConversations(nil)
	result, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)

	require.Empty(t, result)
	require.True(t, cache.HasLoaded("u1"))
	require.Empty(t, cache.Cached("u1"))
	require.Empty(t, store.saved("u1"))

	primed, ok := c.PrimeFromCache("u1")
	require.True(t, ok)
	require.Empty(t, primed)
}

func TestSyncFetchFailurePreservesPriorState(t *testing.T) {
	client := newFakeClient(conv("a", 1), conv("b", 2))
	store := newFakeStore()
	c, cache := newTestCoordinator(t, client, store)

	before, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	require.Len(t, before, 2)

	client.setListErr(errors.New("network down"))
	_, err = c.Sync(context.Background(), "u1", SyncOptions{})
	require.Error(t, err)

	require.Equal(t, before, cache.Cached("u1"))
	require.Equal(t, before, sortConversations(store.saved("u1")))
	require.True(t, cache.HasLoaded("u1"))
}

func TestSyncPersistenceFailureIsNonFatal(t *testing.T) {
	client := newFakeClient(conv("a", 1))
	store := newFakeStore()
	store.replaceErr = errors.New("disk full")
	c, cache := newTestCoordinator(t, client, store)

	result, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	// In-memory cache remains the source of truth for the session
	require.Equal(t, result, cache.Cached("u1"))
}

func TestSyncHungProbeCountsAsDenial(t *testing.T) {
	client := newFakeClient(conv("a", 1), conv("b", 2))
	client.probeBlocked["a"] = true
	c, _ := newTestCoordinator(t, client, newFakeStore(),
		WithProbeTimeout(20*time.Millisecond))

	done := make(chan struct{})
	var result []domain.Conversation
	go func() {
		defer close(done)
		result, _ = c.Sync(context.Background(), "u1", SyncOptions{})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sync cycle hung on a blocked probe")
	}

	require.Len(t, result, 1)
	require.Equal(t, "b", result[0].ID)
}

func TestPrimeFromCacheServesWithoutNetwork(t *testing.T) {
	client := newFakeClient(conv("b", 2), conv("a", 1))
	c, _ := newTestCoordinator(t, client, newFakeStore())

	_, err := c.Sync(context.Background(), "u1", SyncOptions{ShowLoading: true})
	require.NoError(t, err)
	require.Equal(t, 1, client.listCount())

	// Collect background work instead of running it, to observe the
	// moment PrimeFromCache returns
	var background []func()
	c.spawn = func(f func()) { background = append(background, f) }

	primed, ok := c.PrimeFromCache("u1")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, []string{primed[0].ID, primed[1].ID})
	require.Equal(t, 1, client.listCount(), "prime must not hit the network before returning")

	// The scheduled soft refresh still reconciles afterwards
	require.Len(t, background, 1)
	for _, f := range background {
		f()
	}
	require.Equal(t, 2, client.listCount())
}

func TestPrimeFromCacheMissOnColdSession(t *testing.T) {
	c, _ := newTestCoordinator(t, newFakeClient(), newFakeStore())

	scheduled := false
	c.spawn = func(f func()) { scheduled = true }

	primed, ok := c.PrimeFromCache("u1")
	require.False(t, ok)
	require.Nil(t, primed)
	require.False(t, scheduled)
}

func TestSyncLocalFallbackSkipsAuthorization(t *testing.T) {
	client := newFakeClient()
	store := newFakeStore()
	store.data["u1"] = []domain.Conversation{conv("c", 10), conv("a", 1)}
	c, _ := newTestCoordinator(t, client, store)

	result, err := c.SyncLocalFallback(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, result, 2)
	require.Equal(t, "a", result[0].ID)
	require.Zero(t, client.probeCount())
	require.Zero(t, client.listCount())
}

func TestDeleteRemovesConversationEverywhere(t *testing.T) {
	client := newFakeClient(conv("a", 1), conv("b", 2))
	store := newFakeStore()
	c, cache := newTestCoordinator(t, client, store)

	_, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)

	var updates []Update
	unsubscribe := c.Subscribe(func(u Update) { updates = append(updates, u) })
	defer unsubscribe()

	require.NoError(t, c.Delete(context.Background(), "u1", "a"))

	require.Equal(t, []string{"a"}, client.deleted)
	remaining := cache.Cached("u1")
	require.Len(t, remaining, 1)
	require.Equal(t, "b", remaining[0].ID)
	require.Len(t, store.saved("u1"), 1)
	require.Len(t, updates, 1)
	require.Equal(t, "u1", updates[0].UserID)
}

func TestDeleteUnknownIDIsLocalNoop(t *testing.T) {
	client := newFakeClient(conv("a", 1))
	c, cache := newTestCoordinator(t, client, newFakeStore())

	_, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	before := cache.Cached("u1")

	require.NoError(t, c.Delete(context.Background(), "u1", "missing"))
	require.Equal(t, before, cache.Cached("u1"))
}

func TestDeleteTransportFailureLeavesStateUntouched(t *testing.T) {
	client := newFakeClient(conv("a", 1))
	c, cache := newTestCoordinator(t, client, newFakeStore())

	_, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	before := cache.Cached("u1")

	client.deleteErr = errors.New("server error")
	err = c.Delete(context.Background(), "u1", "a")
	require.Error(t, err)
	require.Equal(t, before, cache.Cached("u1"))
}

func TestDeleteNotFoundIsDetectableThroughWrapping(t *testing.T) {
	client := newFakeClient(conv("a", 1))
	c, cache := newTestCoordinator(t, client, newFakeStore())

	_, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	before := cache.Cached("u1")

	client.deleteErr = domain.ConversationNotFoundError{ID: "a"}
	err = c.Delete(context.Background(), "u1", "a")
	require.Error(t, err)
	require.True(t, domain.IsConversationNotFoundError(err))
	require.Equal(t, before, cache.Cached("u1"))
}

// A delivery whose cycle was superseded by an already-delivered fresher
// one must be dropped, so a subscriber's last-seen list is never stale.
func TestSupersededNotificationDropped(t *testing.T) {
	client := newFakeClient(conv("fresh", 1))
	c, _ := newTestCoordinator(t, client, newFakeStore())

	_, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)

	var updates []Update
	unsubscribe := c.Subscribe(func(u Update) { updates = append(updates, u) })
	defer unsubscribe()

	// A delayed delivery from the superseded first cycle arriving now
	c.notifyCommitted("u1", 0, []domain.Conversation{conv("old", 60)})
	require.Empty(t, updates)

	_, err = c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, "fresh", updates[0].Conversations[0].ID)
}

// A slow cycle that started first must not overwrite the result of a
// faster cycle that started later.
func TestOverlappingSyncsStaleResultDropped(t *testing.T) {
	client := newFakeClient(conv("old", 60))
	c, cache := newTestCoordinator(t, client, newFakeStore())

	var lastSeen []domain.Conversation
	unsubscribe := c.Subscribe(func(u Update) { lastSeen = u.Conversations })
	defer unsubscribe()

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	client.onList = func() {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
	}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = c.Sync(context.Background(), "u1", SyncOptions{})
	}()

	<-entered
	client.setConversations([]domain.Conversation{conv("fresh", 1)})

	fresh, err := c.Sync(context.Background(), "u1", SyncOptions{})
	require.NoError(t, err)
	require.Equal(t, "fresh", fresh[0].ID)

	close(release)
	<-firstDone

	committed := cache.Cached("u1")
	require.Len(t, committed, 1)
	require.Equal(t, "fresh", committed[0].ID,
		"stale early cycle must not overwrite the later result")
	require.Len(t, lastSeen, 1)
	require.Equal(t, "fresh", lastSeen[0].ID,
		"subscribers must not be left holding the stale list")
}
