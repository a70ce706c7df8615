package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pkmn-engine/arena-server-go/internal/catalog"
	"github.com/pkmn-engine/arena-server-go/internal/config"
	"github.com/pkmn-engine/arena-server-go/internal/game"
	"github.com/pkmn-engine/arena-server-go/internal/game/card"
	"github.com/pkmn-engine/arena-server-go/internal/server"
)

var (
	configPath = flag.String("config", "", "path to configuration file (empty runs on defaults)")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting arena server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	cat, err := loadCatalog(ctx, cfg.Catalog)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Info("card catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("cards", cat.Len()),
	)

	arena := game.NewArena(logger)
	if cfg.Replay.Enabled {
		arena.EnableReplayRecording(cfg.Replay.Dir)
		logger.Info("replay recording enabled", zap.String("dir", cfg.Replay.Dir))
	}

	hub := server.NewHub(logger, arena, cat)
	hub.SetRuleset(cfg.GameRules())
	go hub.Run(ctx)

	srv := server.New(logger, hub, cfg.Server.Address)
	go func() {
		if serveErr := srv.Start(); serveErr != nil {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	logger.Info("arena server initialized",
		zap.String("address", cfg.Server.Address),
		zap.Int("prize_count", cfg.Game.PrizeCount),
		zap.Bool("replay", cfg.Replay.Enabled),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not drain cleanly", zap.Error(err))
	}
	cancel()

	logger.Info("arena server stopped")
}

// loadCatalog builds the shared card catalog from the configured
// source.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig) (*catalog.Catalog, error) {
	var (
		cards []card.Card
		err   error
	)

	switch cfg.Source {
	case "json":
		f, openErr := os.Open(cfg.Path)
		if openErr != nil {
			return nil, openErr
		}
		defer f.Close()
		cards, err = catalog.LoadJSON(f)

	case "csv":
		f, openErr := os.Open(cfg.Path)
		if openErr != nil {
			return nil, openErr
		}
		defer f.Close()
		cards, err = catalog.LoadCSV(f)

	case "sqlite":
		loader, openErr := catalog.OpenSQLite(cfg.Path)
		if openErr != nil {
			return nil, openErr
		}
		defer loader.Close()
		cards, err = loader.LoadAll(ctx)

	case "postgres":
		pool, poolErr := pgxpool.New(ctx, cfg.DSN)
		if poolErr != nil {
			return nil, poolErr
		}
		defer pool.Close()
		cards, err = catalog.NewPostgresLoader(pool).LoadAll(ctx)

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	return catalog.New(cards...)
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
