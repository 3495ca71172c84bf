//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks -exclude_interfaces=Store
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Role describes what a user is within the university.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// User represents a directory entry.
type User struct {
	ID           int64
	Username     string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// MessageKind is the closed set of message payload kinds.
type MessageKind string

const (
	KindText    MessageKind = "text"
	KindImage   MessageKind = "image"
	KindFile    MessageKind = "file"
	KindNotice  MessageKind = "notice"
	KindUnknown MessageKind = "unknown"
)

// ParseMessageKind maps a raw value onto a known kind.
// The empty string maps to KindText; anything unrecognised maps to KindUnknown.
func ParseMessageKind(raw string) MessageKind {
	switch MessageKind(raw) {
	case "", KindText:
		return KindText
	case KindImage, KindFile, KindNotice:
		return MessageKind(raw)
	default:
		return KindUnknown
	}
}

// Message represents a persisted direct message.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Body       string
	Kind       MessageKind
	CreatedAt  time.Time
	Read       bool
}

// Counterpart returns the other participant of the message from userID's point of view.
func (m *Message) Counterpart(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Before reports whether m sorts before other in display order.
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// DirectKey builds the conversation key for a pair of users: "dm:{min}:{max}".
func DirectKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%d:%d", a, b)
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, user *User) (*User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound when absent.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username. Returns ErrNotFound when absent.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and fills in its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message by ID. Returns ErrNotFound when absent.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// ListMessagesFor returns every message the user sent or received,
	// ordered by (created_at, id) ascending.
	ListMessagesFor(ctx context.Context, userID int64) ([]*Message, error)

	// ListConversation returns the messages stored under a direct key,
	// ordered by (created_at, id) ascending.
	ListConversation(ctx context.Context, directKey string) ([]*Message, error)

	// MarkRead flips the read flag if it is unset.
	// changed reports whether this call performed the transition.
	MarkRead(ctx context.Context, id int64) (msg *Message, changed bool, err error)

	// CountUnread counts unread messages addressed to the user.
	CountUnread(ctx context.Context, userID int64) (int, error)

	// LatestMessageTime returns the newest created_at on record,
	// or the zero time when no message exists.
	LatestMessageTime(ctx context.Context) (time.Time, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close releases the underlying resources.
	Close() error
}
