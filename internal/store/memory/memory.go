package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

// Store is an in-process implementation of store.Store.
// Returned values are copies; callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	users      map[int64]*store.User
	usernames  map[string]int64
	messages   map[int64]*store.Message
	userIndex  map[int64][]int64  // userID -> message ids
	directKeys map[string][]int64 // direct key -> message ids

	nextUserID    int64
	nextMessageID int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[int64]*store.User),
		usernames:  make(map[string]int64),
		messages:   make(map[int64]*store.Message),
		userIndex:  make(map[int64][]int64),
		directKeys: make(map[string][]int64),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateUser adds a directory entry.
func (s *Store) CreateUser(_ context.Context, user *store.User) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usernames[user.Username]; exists {
		return nil, fmt.Errorf("insert user: username %q taken", user.Username)
	}

	s.nextUserID++
	u := *user
	u.ID = s.nextUserID
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = &u
	s.usernames[u.Username] = u.ID

	out := u
	return &out, nil
}

// DeleteUser removes a directory entry. Messages are kept.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		delete(s.usernames, u.Username)
		delete(s.users, id)
	}
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", store.ErrNotFound)
	}
	out := *u
	return &out, nil
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	s.mu.RLock()
	id, ok := s.usernames[username]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("user %w", store.ErrNotFound)
	}
	return s.GetUserByID(ctx, id)
}

// SaveMessage appends a message and sets its ID.
func (s *Store) SaveMessage(_ context.Context, msg *store.Message) error {
	if msg.SenderID == msg.ReceiverID {
		return fmt.Errorf("insert message: sender equals receiver")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMessageID++
	msg.ID = s.nextMessageID

	stored := *msg
	s.messages[stored.ID] = &stored
	s.userIndex[stored.SenderID] = append(s.userIndex[stored.SenderID], stored.ID)
	s.userIndex[stored.ReceiverID] = append(s.userIndex[stored.ReceiverID], stored.ID)
	key := store.DirectKey(stored.SenderID, stored.ReceiverID)
	s.directKeys[key] = append(s.directKeys[key], stored.ID)

	return nil
}

// GetMessage retrieves a message by ID.
func (s *Store) GetMessage(_ context.Context, id int64) (*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %d %w", id, store.ErrNotFound)
	}
	out := *m
	return &out, nil
}

// ListMessagesFor returns every message the user sent or received.
func (s *Store) ListMessagesFor(_ context.Context, userID int64) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.userIndex[userID]), nil
}

// ListConversation returns the messages stored under a direct key.
func (s *Store) ListConversation(_ context.Context, directKey string) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.directKeys[directKey]), nil
}

// MarkRead flips the read flag under the write lock.
func (s *Store) MarkRead(_ context.Context, id int64) (*store.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return nil, false, fmt.Errorf("message %d %w", id, store.ErrNotFound)
	}
	changed := !m.Read
	m.Read = true

	out := *m
	return &out, changed, nil
}

// CountUnread counts unread messages addressed to the user.
func (s *Store) CountUnread(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.userIndex[userID] {
		m := s.messages[id]
		if m.ReceiverID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

// LatestMessageTime returns the newest CreatedAt held by the store.
func (s *Store) LatestMessageTime(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	for _, m := range s.messages {
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}
	return latest, nil
}

// collect copies the indexed messages and sorts them in display order.
// Caller must hold s.mu.
func (s *Store) collect(ids []int64) []*store.Message {
	out := make([]*store.Message, 0, len(ids))
	for _, id := range ids {
		m := *s.messages[id]
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

var _ store.Store = (*Store)(nil)
