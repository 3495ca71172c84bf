package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

// Mailbox creates and reads messages.
type Mailbox struct {
	store        store.MessageStore
	directory    Directory
	maxBodyBytes int

	mu     sync.Mutex
	last   time.Time
	seeded bool
	now    func() time.Time
}

// NewMailbox creates a mailbox. maxBodyBytes <= 0 disables the size check.
func NewMailbox(st store.MessageStore, dir Directory, maxBodyBytes int) *Mailbox {
	return &Mailbox{
		store:        st,
		directory:    dir,
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
	}
}

// Send validates and persists a new unread message.
func (m *Mailbox) Send(ctx context.Context, senderID, receiverID int64, body string, kind store.MessageKind) (*store.Message, error) {
	parsed := store.ParseMessageKind(string(kind))
	if parsed == store.KindUnknown {
		return nil, validationError(CodeInvalidKind, fmt.Sprintf("unsupported message type %q", kind))
	}
	if senderID == receiverID {
		return nil, validationError(CodeSelfMessage, "cannot send a message to yourself")
	}
	if strings.TrimSpace(body) == "" {
		return nil, validationError(CodeEmptyBody, "message body is empty")
	}
	if m.maxBodyBytes > 0 && len(body) > m.maxBodyBytes {
		return nil, validationError(CodeBodyTooLarge, fmt.Sprintf("message body exceeds %d bytes", m.maxBodyBytes))
	}

	for _, id := range []int64{senderID, receiverID} {
		_, ok, err := m.directory.ResolveName(ctx, id)
		if err != nil {
			return nil, storageError("resolve participant", err)
		}
		if !ok {
			return nil, validationError(CodeUnknownParticipant, fmt.Sprintf("user %d does not exist", id))
		}
	}

	createdAt, err := m.timestamp(ctx)
	if err != nil {
		return nil, storageError("load latest timestamp", err)
	}

	msg := &store.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Kind:       parsed,
		CreatedAt:  createdAt,
		Read:       false,
	}
	if err := m.store.SaveMessage(ctx, msg); err != nil {
		return nil, storageError("save message", err)
	}

	return msg, nil
}

// Get returns a message by id.
func (m *Mailbox) Get(ctx context.Context, id int64) (*store.Message, error) {
	msg, err := m.store.GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError(fmt.Sprintf("message %d not found", id), err)
		}
		return nil, storageError("get message", err)
	}
	return msg, nil
}

// ListFor returns every message the user sent or received in display order.
// Each call reads the store again.
func (m *Mailbox) ListFor(ctx context.Context, userID int64) ([]*store.Message, error) {
	msgs, err := m.store.ListMessagesFor(ctx, userID)
	if err != nil {
		return nil, storageError("list messages", err)
	}
	return msgs, nil
}

// timestamp never goes backwards, even if the wall clock does. The floor is
// seeded from the newest stored message on first use so it also holds across restarts.
func (m *Mailbox) timestamp(ctx context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.seeded {
		latest, err := m.store.LatestMessageTime(ctx)
		if err != nil {
			return time.Time{}, err
		}
		if latest.After(m.last) {
			m.last = latest.UTC()
		}
		m.seeded = true
	}

	t := m.now().UTC()
	if t.Before(m.last) {
		t = m.last
	}
	m.last = t
	return t, nil
}
