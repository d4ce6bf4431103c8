package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anisong-quiz/internal/catalog"
	"anisong-quiz/internal/config"
	"anisong-quiz/internal/db"
	"anisong-quiz/internal/logging"
	"anisong-quiz/internal/quiz"
	"anisong-quiz/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	if err := run(config.Load()); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	var songs []quiz.Song
	if cfg.SongsCSV != "" {
		var err error
		songs, err = catalog.ReadSongsFile(cfg.SongsCSV)
		if err != nil {
			return fmt.Errorf("read songs: %w", err)
		}
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := quiz.NewService(store, logger, quiz.WithSettings(quiz.Settings{
		DefaultTargetScore:  cfg.DefaultTargetScore,
		DefaultMaxPlayers:   cfg.DefaultMaxPlayers,
		DefaultRoundSeconds: cfg.DefaultRoundSeconds,
		RoomCodeAttempts:    cfg.RoomCodeAttempts,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(songs) > 0 {
		if _, err := svc.ImportSongs(ctx, songs); err != nil {
			return fmt.Errorf("import songs: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv := server.New(svc, logger, registry, server.WithWriteRateLimit(cfg.WriteRatePerSecond, cfg.WriteRateBurst))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("anisong quiz server listening", slog.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore uses Postgres when DATABASE_URL is set and an in-memory store
// otherwise.
func openStore(cfg config.Config, logger *slog.Logger) (quiz.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is not set; rooms are kept in memory")
		return quiz.NewMemoryStore(), func() {}, nil
	}
	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		return nil, nil, fmt.Errorf("database migration failed: %w", err)
	}
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db.NewStore(conn), func() {
		if err := db.Close(conn); err != nil {
			logger.Error("close database", slog.Any("error", err))
		}
	}, nil
}
