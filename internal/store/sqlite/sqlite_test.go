package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", ApplySchema)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStore, username string) *store.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), &store.User{
		Username:     username,
		Name:         username,
		Role:         store.RoleStudent,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return u
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByID(context.Background(), 42)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetUserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSaveAndListMessagesOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")

	base := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	inputs := []*store.Message{
		{SenderID: alice.ID, ReceiverID: bob.ID, Body: "third", Kind: store.KindText, CreatedAt: base.Add(time.Minute)},
		{SenderID: bob.ID, ReceiverID: alice.ID, Body: "first", Kind: store.KindText, CreatedAt: base},
		{SenderID: carol.ID, ReceiverID: alice.ID, Body: "second", Kind: store.KindNotice, CreatedAt: base},
		{SenderID: carol.ID, ReceiverID: bob.ID, Body: "not alice", Kind: store.KindText, CreatedAt: base},
	}
	for _, m := range inputs {
		require.NoError(t, s.SaveMessage(ctx, m))
		require.NotZero(t, m.ID)
	}

	got, err := s.ListMessagesFor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	bodies := []string{got[0].Body, got[1].Body, got[2].Body}
	require.Equal(t, []string{"first", "second", "third"}, bodies)
	require.Equal(t, store.KindNotice, got[1].Kind)
	require.True(t, got[0].CreatedAt.Equal(base))

	again, err := s.ListMessagesFor(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, got, again)

	conv, err := s.ListConversation(ctx, store.DirectKey(bob.ID, alice.ID))
	require.NoError(t, err)
	require.Len(t, conv, 2)
	require.Equal(t, "first", conv[0].Body)
	require.Equal(t, "third", conv[1].Body)
}

func TestSaveMessageRejectsSelfAddressedRow(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")

	err := s.SaveMessage(context.Background(), &store.Message{
		SenderID:   alice.ID,
		ReceiverID: alice.ID,
		Body:       "hi",
		Kind:       store.KindText,
		CreatedAt:  time.Now(),
	})
	require.Error(t, err)
}

func TestMarkReadIsCompareAndSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	msg := &store.Message{SenderID: alice.ID, ReceiverID: bob.ID, Body: "hello", Kind: store.KindText, CreatedAt: time.Now()}
	require.NoError(t, s.SaveMessage(ctx, msg))

	count, err := s.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	updated, changed, err := s.MarkRead(ctx, msg.ID)
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, updated.Read)

	updated, changed, err = s.MarkRead(ctx, msg.ID)
	require.NoError(t, err)
	require.False(t, changed)
	require.True(t, updated.Read)

	count, err = s.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	_, _, err = s.MarkRead(ctx, msg.ID+100)
	require.True(t, errors.Is(err, store.ErrNotFound), "expected not found, got %v", err)
}

func TestMarkReadConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	msg := &store.Message{SenderID: alice.ID, ReceiverID: bob.ID, Body: "race", Kind: store.KindText, CreatedAt: time.Now()}
	require.NoError(t, s.SaveMessage(ctx, msg))

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, changed, err := s.MarkRead(ctx, msg.ID)
			if err != nil || !m.Read {
				t.Errorf("mark read: %v", err)
				return
			}
			if changed {
				mu.Lock()
				changes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, changes)
}

func TestMessagesSurviveUserRemoval(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	msg := &store.Message{SenderID: alice.ID, ReceiverID: bob.ID, Body: "still here", Kind: store.KindText, CreatedAt: time.Now()}
	require.NoError(t, s.SaveMessage(ctx, msg))

	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, bob.ID)
	require.NoError(t, err)

	got, err := s.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	require.Equal(t, "still here", got.Body)
}

func TestLatestMessageTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestMessageTime(ctx)
	require.NoError(t, err)
	require.True(t, latest.IsZero())

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	newest := time.Date(2030, 1, 2, 3, 4, 5, 6, time.UTC)
	for _, at := range []time.Time{newest.Add(-time.Hour), newest, newest.Add(-time.Minute)} {
		require.NoError(t, s.SaveMessage(ctx, &store.Message{
			SenderID: alice.ID, ReceiverID: bob.ID, Body: "x", Kind: store.KindText, CreatedAt: at,
		}))
	}

	latest, err = s.LatestMessageTime(ctx)
	require.NoError(t, err)
	require.True(t, newest.Equal(latest), "got %s", latest)
}

func TestDSNKeepsExistingQuery(t *testing.T) {
	tests := []struct {
		driver string
		path   string
		want   string
	}{
		{DriverCGO, "chat.db", "chat.db?_journal_mode=WAL&_busy_timeout=5000"},
		{DriverCGO, "file:chat.db?cache=shared", "file:chat.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000"},
		{DriverPure, "chat.db", "chat.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"},
		{DriverPure, "file:chat.db?mode=rwc", "file:chat.db?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"},
	}

	for _, tt := range tests {
		t.Run(tt.driver+" "+tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, dsn(tt.driver, tt.path))
		})
	}
}
