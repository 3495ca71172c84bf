package messaging

import (
	"context"

	"github.com/samber/lo"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

// UnknownName is shown for participants the directory no longer knows.
const UnknownName = "Unknown"

// EnrichedMessage is a message with resolved participant names.
type EnrichedMessage struct {
	store.Message
	SenderName   string
	ReceiverName string
}

// Threads assembles conversation views.
type Threads struct {
	store     store.MessageStore
	directory Directory
}

// NewThreads creates a thread assembler.
func NewThreads(st store.MessageStore, dir Directory) *Threads {
	return &Threads{store: st, directory: dir}
}

// Conversation returns the messages exchanged between userID and counterpartID in display order.
func (t *Threads) Conversation(ctx context.Context, userID, counterpartID int64) ([]EnrichedMessage, error) {
	msgs, err := t.store.ListConversation(ctx, store.DirectKey(userID, counterpartID))
	if err != nil {
		return nil, storageError("list conversation", err)
	}
	return t.enrich(ctx, msgs)
}

// Inbox returns the latest message of every conversation the user takes part in, keyed by counterpart.
func (t *Threads) Inbox(ctx context.Context, userID int64) (map[int64]EnrichedMessage, error) {
	msgs, err := t.store.ListMessagesFor(ctx, userID)
	if err != nil {
		return nil, storageError("list messages", err)
	}

	latest := LatestPerCounterpart(msgs, userID)
	enriched, err := t.enrich(ctx, lo.Values(latest))
	if err != nil {
		return nil, err
	}

	inbox := make(map[int64]EnrichedMessage, len(enriched))
	for _, em := range enriched {
		inbox[em.Counterpart(userID)] = em
	}
	return inbox, nil
}

// LatestPerCounterpart picks the last message of each conversation by (CreatedAt, ID).
func LatestPerCounterpart(msgs []*store.Message, userID int64) map[int64]*store.Message {
	latest := make(map[int64]*store.Message)
	for _, m := range msgs {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		other := m.Counterpart(userID)
		if cur, ok := latest[other]; !ok || cur.Before(m) {
			latest[other] = m
		}
	}
	return latest
}

func (t *Threads) enrich(ctx context.Context, msgs []*store.Message) ([]EnrichedMessage, error) {
	ids := lo.Uniq(lo.FlatMap(msgs, func(m *store.Message, _ int) []int64 {
		return []int64{m.SenderID, m.ReceiverID}
	}))

	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		name, ok, err := t.directory.ResolveName(ctx, id)
		if err != nil {
			return nil, storageError("resolve name", err)
		}
		if !ok {
			name = UnknownName
		}
		names[id] = name
	}

	return lo.Map(msgs, func(m *store.Message, _ int) EnrichedMessage {
		return EnrichedMessage{
			Message:      *m,
			SenderName:   names[m.SenderID],
			ReceiverName: names[m.ReceiverID],
		}
	}), nil
}
