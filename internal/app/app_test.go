package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/campuschat-server/internal/config"
	"github.com/vovakirdan/campuschat-server/internal/store"
	"github.com/vovakirdan/campuschat-server/internal/store/memory"
	"github.com/vovakirdan/campuschat-server/internal/store/sqlite"
)

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.Default()
		cfg.DatabaseDriver = "memory"
		st, err := OpenStore(ctx, &cfg)
		require.NoError(t, err)
		require.IsType(t, &memory.Store{}, st)
		require.NoError(t, st.Close())
	})

	for _, driver := range []string{sqlite.DriverCGO, sqlite.DriverPure} {
		t.Run(driver, func(t *testing.T) {
			cfg := config.Default()
			cfg.DatabaseDriver = driver
			cfg.DatabasePath = filepath.Join(t.TempDir(), "chat.db")

			st, err := OpenStore(ctx, &cfg)
			require.NoError(t, err)
			defer st.Close()

			u, err := st.CreateUser(ctx, &store.User{Username: "alice", Name: "Alice", Role: store.RoleStudent, PasswordHash: "x"})
			require.NoError(t, err)
			require.NotZero(t, u.ID)
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabaseDriver = "memory"
	cfg.ShutdownTimeout = time.Second

	logger := zerolog.Nop()
	a, err := New(context.Background(), &cfg, &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
