package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, path, resolved)
	require.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":9090\"\ndatabase_driver: memory\nsend_rate_limit: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CAMPUSCHAT_SEND_RATE_LIMIT", "7")
	t.Setenv("CAMPUSCHAT_JWT_TTL", "1h")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "memory", cfg.DatabaseDriver)
	require.Equal(t, 7, cfg.SendRateLimit)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.DatabaseDriver = "postgres"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DatabaseDriver = "memory"
	cfg.DatabasePath = ""
	require.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.DatabasePath = ""
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.JWTSecret = "short"
	require.Error(t, cfg.Validate())
}

func TestUpdateFromKeepsZeroValues(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":1234", LogLevel: "debug"})

	require.Equal(t, ":1234", cfg.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, Default().DatabasePath, cfg.DatabasePath)
}
