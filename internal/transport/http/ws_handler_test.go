package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/campuschat-server/internal/proto"
	"github.com/vovakirdan/campuschat-server/internal/store"
)

type wireEvent struct {
	Type  string                  `json:"type"`
	Event string                  `json:"event"`
	Data  proto.EventNotification `json:"data"`
}

func dialNotifications(t *testing.T, ctx context.Context, baseURL, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws/notifications?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestNotificationStream(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.register(t, "alice", "Alice", store.RoleStudent)
	bob := env.register(t, "bob", "Bob", store.RoleStudent)

	ts := httptest.NewServer(env.server.Handler)
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialNotifications(t, ctx, ts.URL, bob.Token)

	var hello struct {
		Type string          `json:"type"`
		Data proto.HelloData `json:"data"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &hello))
	require.Equal(t, proto.OutboundTypeHello, hello.Type)
	require.Equal(t, bob.ID, hello.Data.UserID)

	var snapshot wireEvent
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	require.Equal(t, "unread", snapshot.Event)
	require.Zero(t, snapshot.Data.Unread)

	// The client is subscribed before hello is written, so this send is observed.
	resp := env.do(t, http.MethodPost, "/api/messages", alice.Token,
		SendMessageRequest{ReceiverID: bob.ID, Body: "ping"}, nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var received wireEvent
	require.NoError(t, wsjson.Read(ctx, conn, &received))

	require.Equal(t, proto.OutboundTypeEvent, received.Type)
	require.Equal(t, "message_received", received.Event)
	require.NotNil(t, received.Data.Message)
	require.Equal(t, "ping", received.Data.Message.Body)
	require.Equal(t, alice.ID, received.Data.Message.SenderID)
	require.Equal(t, 1, received.Data.Unread)
}

func TestNotificationStreamRejectsBadToken(t *testing.T) {
	env := newTestEnv(t, nil)

	ts := httptest.NewServer(env.server.Handler)
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/notifications?token=garbage"
	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
