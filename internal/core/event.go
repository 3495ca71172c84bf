package core

import "github.com/vovakirdan/campuschat-server/internal/store"

// EventKind is a notification the core emits to subscribed clients.
type EventKind int

const (
	// EventMessageReceived notifies the receiver about a new message.
	EventMessageReceived EventKind = iota
	// EventMessageRead notifies the sender that the receiver read a message.
	EventMessageRead
	// EventUnreadSnapshot carries the current unread count on subscribe.
	EventUnreadSnapshot
)

func (k EventKind) String() string {
	switch k {
	case EventMessageReceived:
		return "message_received"
	case EventMessageRead:
		return "message_read"
	case EventUnreadSnapshot:
		return "unread"
	default:
		return "unknown"
	}
}

// Event is delivered to clients subscribed for a user.
type Event struct {
	Kind    EventKind
	Message *store.Message // nil for EventUnreadSnapshot
	Unread  int            // recipient's unread count after the change
}
