package messaging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/campuschat-server/internal/core"
	"github.com/vovakirdan/campuschat-server/internal/store"
)

// Notifier receives events for push delivery. core.Hub implements it.
type Notifier interface {
	Publish(userID int64, ev *core.Event)
}

// Service combines the messaging components behind one entry point
// and pushes change events to a Notifier when one is configured.
type Service struct {
	mailbox  *Mailbox
	reads    *ReadTracker
	threads  *Threads
	signal   *Signal
	notifier Notifier
	log      *zerolog.Logger
}

// Config holds service tunables.
type Config struct {
	MaxBodyBytes int
}

// New creates a messaging service. notifier may be nil.
func New(st store.MessageStore, dir Directory, notifier Notifier, cfg Config, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		mailbox:  NewMailbox(st, dir, cfg.MaxBodyBytes),
		reads:    NewReadTracker(st),
		threads:  NewThreads(st, dir),
		signal:   NewSignal(st),
		notifier: notifier,
		log:      logger,
	}
}

// Send persists a message and notifies the receiver.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, body string, kind store.MessageKind) (*store.Message, error) {
	msg, err := s.mailbox.Send(ctx, senderID, receiverID, body, kind)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, msg.ReceiverID, core.EventMessageReceived, msg)
	return msg, nil
}

// Get returns a message by id.
func (s *Service) Get(ctx context.Context, id int64) (*store.Message, error) {
	return s.mailbox.Get(ctx, id)
}

// ListFor returns every message the user sent or received.
func (s *Service) ListFor(ctx context.Context, userID int64) ([]*store.Message, error) {
	return s.mailbox.ListFor(ctx, userID)
}

// MarkRead moves the message to the read state. Only the transitioning call notifies.
func (s *Service) MarkRead(ctx context.Context, id int64) (*store.Message, bool, error) {
	msg, changed, err := s.reads.MarkRead(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if changed {
		s.notify(ctx, msg.ReceiverID, core.EventMessageRead, msg)
		s.notify(ctx, msg.SenderID, core.EventMessageRead, msg)
	}
	return msg, changed, nil
}

// Conversation returns the enriched messages between two users.
func (s *Service) Conversation(ctx context.Context, userID, counterpartID int64) ([]EnrichedMessage, error) {
	return s.threads.Conversation(ctx, userID, counterpartID)
}

// Inbox returns the latest message per counterpart.
func (s *Service) Inbox(ctx context.Context, userID int64) (map[int64]EnrichedMessage, error) {
	return s.threads.Inbox(ctx, userID)
}

// UnreadCount counts unread messages addressed to the user.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.signal.UnreadCount(ctx, userID)
}

// HasUnread reports whether the user has unread messages.
func (s *Service) HasUnread(ctx context.Context, userID int64) (bool, error) {
	return s.signal.HasUnread(ctx, userID)
}

// notify publishes ev to userID with that user's fresh unread count.
// A failed count is logged; the write it follows has already succeeded.
func (s *Service) notify(ctx context.Context, userID int64, kind core.EventKind, msg *store.Message) {
	if s.notifier == nil {
		return
	}
	unread, err := s.signal.UnreadCount(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("skip notification: unread count failed")
		return
	}
	copied := *msg
	s.notifier.Publish(userID, &core.Event{Kind: kind, Message: &copied, Unread: unread})
}
