package messaging

import (
	"context"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

// Signal derives the unread badge state on demand.
type Signal struct {
	store store.MessageStore
}

// NewSignal creates a notification signal.
func NewSignal(st store.MessageStore) *Signal {
	return &Signal{store: st}
}

// UnreadCount counts unread messages addressed to the user.
func (s *Signal) UnreadCount(ctx context.Context, userID int64) (int, error) {
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, storageError("count unread", err)
	}
	return n, nil
}

// HasUnread reports whether the user has at least one unread message.
func (s *Signal) HasUnread(ctx context.Context, userID int64) (bool, error) {
	n, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
