package events

// Kind defines the type of an invalidation event
type Kind int

const (
	// KindRefreshInbox is an explicit user- or app-triggered inbox refresh
	KindRefreshInbox Kind = iota
	// KindMessageUpserted fires when any message is created or updated
	// anywhere in the app, incoming or outgoing
	KindMessageUpserted
	// KindMessageSavedLocally fires when an outgoing message is queued to
	// local storage before server confirmation
	KindMessageSavedLocally
)

func (k Kind) String() string {
	switch k {
	case KindRefreshInbox:
		return "refreshInbox"
	case KindMessageUpserted:
		return "messageUpserted"
	case KindMessageSavedLocally:
		return "messageSavedLocally"
	default:
		return "unknown"
	}
}

// Event is the interface for all invalidation events. Events are pure
// triggers: subscribers must not depend on any payload beyond the kind.
type Event interface {
	Kind() Kind
}

// RefreshInboxEvent requests a resynchronization of the inbox. Blocking
// indicates the caller wants a visible loading state; the default is a
// soft refresh.
type RefreshInboxEvent struct {
	Blocking bool
}

func (e RefreshInboxEvent) Kind() Kind {
	return KindRefreshInbox
}

// MessageUpsertedEvent signals that a message was created or updated.
type MessageUpsertedEvent struct{}

func (e MessageUpsertedEvent) Kind() Kind {
	return KindMessageUpserted
}

// MessageSavedLocallyEvent signals an optimistic local write of an
// outgoing message.
type MessageSavedLocallyEvent struct{}

func (e MessageSavedLocallyEvent) Kind() Kind {
	return KindMessageSavedLocally
}
