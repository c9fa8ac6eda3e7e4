package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/opentabletop/tabletop-server-go/internal/catalog"
	"github.com/opentabletop/tabletop-server-go/internal/config"
	"github.com/opentabletop/tabletop-server-go/internal/game"
	"github.com/opentabletop/tabletop-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Local development convenience; env vars still win via viper.
	_ = godotenv.Load()

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

	logger.Info("starting tabletop server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Fixed session registry, never modified after startup.
	registry := game.NewRegistry(sessionDefs(cfg.Game.Sessions), logger)

	// Optional token-template catalog.
	var cat *catalog.Store
	if cfg.Catalog.Enabled {
		cat, err = catalog.New(ctx, cfg.Catalog.DatabaseURL, logger)
		if err != nil {
			logger.Warn("token catalog unavailable, using client-supplied templates only", zap.Error(err))
			cat = nil
		} else {
			defer cat.Close()
		}
	}

	hub := server.NewHub(logger)
	handler := server.NewHandler(registry, hub, cat, cfg.Game.GracePeriod, logger)
	defer handler.Close()

	httpServer := server.NewHTTPServer(cfg.Server, registry, hub, handler, logger)

	go func() {
		logger.Info("starting websocket server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	logger.Info("tabletop server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.Strings("sessions", registry.Codes()),
		zap.Duration("grace_period", cfg.Game.GracePeriod),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	// Tell clients to return to login before the listener goes away.
	handler.ForceDisconnectAll("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("tabletop server stopped")
}

// sessionDefs maps configured sessions onto registry definitions.
func sessionDefs(sessions []config.SessionConfig) []game.SessionDef {
	defs := make([]game.SessionDef, 0, len(sessions))
	for _, s := range sessions {
		sessionType := game.SessionTypeStandard
		if s.Type == string(game.SessionTypeCommander) {
			sessionType = game.SessionTypeCommander
		}
		defs = append(defs, game.SessionDef{Code: s.Code, Type: sessionType})
	}
	return defs
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
