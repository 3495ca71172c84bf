package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/campuschat-server/internal/auth"
	"github.com/vovakirdan/campuschat-server/internal/config"
	"github.com/vovakirdan/campuschat-server/internal/core"
	"github.com/vovakirdan/campuschat-server/internal/service/messaging"
	"github.com/vovakirdan/campuschat-server/internal/store"
	"github.com/vovakirdan/campuschat-server/internal/store/sqlite"
)

type testEnv struct {
	server *http.Server
	store  *sqlite.SQLiteStore
	auth   *auth.Service
}

type testUser struct {
	ID    int64
	Token string
}

// newTestEnv builds the full HTTP stack on an in-memory SQLite store.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()
	return newTestEnvWithMessages(t, mutate, nil)
}

// newTestEnvWithMessages is newTestEnv with messages served by the given store.
// Users always live in the SQLite store so auth keeps working.
func newTestEnvWithMessages(t *testing.T, mutate func(*config.Config), messages store.MessageStore) *testEnv {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.JWTSecret = "test-secret"
	cfg.SendRateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	})

	disabledLogger := zerolog.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	hub := core.NewHub(&disabledLogger)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	if messages == nil {
		messages = st
	}
	svc := messaging.New(messages, messaging.NewStoreDirectory(st), hub, messaging.Config{MaxBodyBytes: cfg.MaxMessageBytes}, &disabledLogger)
	server := NewServer(svc, hub, authService, st, &cfg, &disabledLogger)

	return &testEnv{server: server, store: st, auth: authService}
}

func (e *testEnv) register(t *testing.T, username, name string, role store.Role) testUser {
	t.Helper()

	token, user, err := e.auth.Register(context.Background(), auth.Registration{
		Username: username,
		Password: "password123",
		Name:     name,
		Role:     role,
	})
	require.NoError(t, err)
	return testUser{ID: user.ID, Token: token}
}

// do performs a request against the router and decodes the JSON body into out when non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(resp, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), out), "body: %s", resp.Body.String())
	}
	return resp
}
