package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/campuschat-server/internal/app"
	"github.com/vovakirdan/campuschat-server/internal/config"
	"github.com/vovakirdan/campuschat-server/internal/log"
)

var (
	configPath string
	addr       string
	logLevel   string
	dbDriver   string
)

// rootCmd runs the HTTP server.
var rootCmd = &cobra.Command{
	Use:   "campuschat-server",
	Short: "Direct messaging service for the campus admin app",
	Long: `Serves the direct messaging API, unread counters, and the
notification stream used by the campus administration UI.`,
	SilenceUsage: true,
	RunE:         runServer,
}

// migrateCmd applies the database schema and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "HTTP listen address")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Storage driver (sqlite3, sqlite, memory)")

	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves config from .env, file, env vars, and flags, then validates it.
func loadConfig() (*config.Config, *zerolog.Logger, error) {
	_ = godotenv.Load()

	bootLogger := log.New("info", "console")

	cfg, path, err := config.Load(bootLogger, configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.UpdateFrom(config.Config{Addr: addr, LogLevel: logLevel, DatabaseDriver: dbDriver})

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config", path).Msg("configuration loaded")
	return &cfg, logger, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize application")
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting campuschat server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := app.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer st.Close()

	logger.Info().Str("driver", cfg.DatabaseDriver).Str("db_path", cfg.DatabasePath).Msg("schema applied")
	return nil
}
