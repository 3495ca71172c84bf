package proto

const (
	ProtocolVersion = 1

	OutboundTypeHello = "hello"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// HelloData is sent once after the notification stream is accepted.
type HelloData struct {
	Protocol int   `json:"protocol"`
	UserID   int64 `json:"user_id"`
}

// EventNotification is the payload of every notification event.
type EventNotification struct {
	Unread  int           `json:"unread"`
	Message *EventMessage `json:"message,omitempty"`
}

// EventMessage is the message summary carried by notifications.
type EventMessage struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Body       string `json:"body"`
	Type       string `json:"type"`
	Read       bool   `json:"read"`
	TS         int64  `json:"ts"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
