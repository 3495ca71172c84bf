package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/campuschat-server/internal/auth"
	"github.com/vovakirdan/campuschat-server/internal/config"
	"github.com/vovakirdan/campuschat-server/internal/core"
	"github.com/vovakirdan/campuschat-server/internal/service/messaging"
	"github.com/vovakirdan/campuschat-server/internal/store"
	"github.com/vovakirdan/campuschat-server/internal/store/memory"
	"github.com/vovakirdan/campuschat-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/campuschat-server/internal/transport/http"
)

const driverMemory = "memory"

// App wires together storage, messaging, and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// OpenStore opens the configured backend and applies migrations where relevant.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseDriver == driverMemory {
		return memory.New(), nil
	}

	st, err := sqlite.Open(cfg.DatabaseDriver, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DatabaseDriver, err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().
		Str("driver", cfg.DatabaseDriver).
		Str("db_path", cfg.DatabasePath).
		Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	hub := core.NewHub(logger)
	svc := messaging.New(
		st,
		messaging.NewStoreDirectory(st),
		hub,
		messaging.Config{MaxBodyBytes: cfg.MaxMessageBytes},
		logger,
	)
	server := transporthttp.NewServer(svc, hub, authService, st, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the hub and HTTP server and blocks until ctx is cancelled or either fails.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
