package inbox

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/gatherly-app/gatherly/internal/domain"
)

// fakeClient is an in-memory transport double. Probe behavior is driven
// by probeErrs (id -> error) and probeBlocked (id -> wait for ctx
// cancellation, to simulate a hung probe).
type fakeClient struct {
	mu sync.Mutex

	conversations []domain.Conversation
	listErr       error
	listCalls     int
	onList        func()

	probeErrs    map[string]error
	probeBlocked map[string]bool
	probeCalls   []string

	deleteErr error
	deleted   []string
}

func newFakeClient(conversations ...domain.Conversation) *fakeClient {
	return &fakeClient{
		conversations: conversations,
		probeErrs:     make(map[string]error),
		probeBlocked:  make(map[string]bool),
	}
}

func (f *fakeClient) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	f.mu.Lock()
	f.listCalls++
	hook := f.onList
	conversations := make([]domain.Conversation, len(f.conversations))
	copy(conversations, f.conversations)
	err := f.listErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (f *fakeClient) ListMessages(ctx context.Context, conversationID string, page int) ([]domain.Message, error) {
	f.mu.Lock()
	f.probeCalls = append(f.probeCalls, conversationID)
	blocked := f.probeBlocked[conversationID]
	err := f.probeErrs[conversationID]
	f.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return []domain.Message{}, nil
}

func (f *fakeClient) DeleteConversation(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, conversationID)
	return nil
}

func (f *fakeClient) setConversations(conversations []domain.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversations = conversations
}

func (f *fakeClient) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeClient) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probeCalls)
}

func (f *fakeClient) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// fakeStore is an in-memory conversation store double.
type fakeStore struct {
	mu sync.Mutex

	data map[string][]domain.Conversation

	fetchErr   error
	replaceErr error
	deleteErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]domain.Conversation)}
}

func (f *fakeStore) FetchLocal(ctx context.Context, userID string) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.Conversation, len(f.data[userID]))
	copy(out, f.data[userID])
	return out, nil
}

func (f *fakeStore) ReplaceAll(ctx context.Context, userID string, conversations []domain.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	stored := make([]domain.Conversation, len(conversations))
	copy(stored, conversations)
	f.data[userID] = stored
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, userID string, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.data[userID][:0]
	for _, conv := range f.data[userID] {
		if conv.ID != conversationID {
			kept = append(kept, conv)
		}
	}
	f.data[userID] = kept
	return nil
}

func (f *fakeStore) saved(userID string) []domain.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Conversation, len(f.data[userID]))
	copy(out, f.data[userID])
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
