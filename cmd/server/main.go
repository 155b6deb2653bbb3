package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wchen310/tictactoe-arena/internal/api/controller"
	"github.com/wchen310/tictactoe-arena/internal/api/repository"
	"github.com/wchen310/tictactoe-arena/internal/api/service"
	"github.com/wchen310/tictactoe-arena/internal/config"
	"github.com/wchen310/tictactoe-arena/internal/db"
	"github.com/wchen310/tictactoe-arena/internal/events"
	"github.com/wchen310/tictactoe-arena/internal/logger"
	"github.com/wchen310/tictactoe-arena/internal/server"
	"github.com/wchen310/tictactoe-arena/internal/session"
	"github.com/wchen310/tictactoe-arena/internal/telemetry"
)

func main() {
	ctx := context.Background()

	conf := config.MustLoad("./config.yml")

	shutdown, err := telemetry.InitOtel(ctx, conf.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	logger.Init(logger.ParseLevel(conf.LogLevel))

	database, err := db.Connect(conf.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open sqlite db: %v", err)
	}
	defer database.Close()

	// Redis is a non-authoritative supplement (event fan-out, leaderboard
	// cache); the server runs without it.
	rdb, err := db.NewRedisClient(ctx, conf.Redis.Addr())
	if err != nil {
		slog.Warn("redis unavailable, continuing without it", "error", err)
		rdb = nil
	}

	playerRepo := repository.NewPlayerRepository(database)
	matchRepo := repository.NewMatchRepository(database)

	playerService := service.NewPlayerService(playerRepo, rdb, []byte(conf.JWTSecretKey))
	matchService := service.NewMatchService(matchRepo, playerRepo, rdb)

	playerController := controller.NewPlayerController(playerService)
	matchController := controller.NewMatchController(matchService)

	publisher := events.NewPublisher(rdb)
	registry := session.NewRegistry(matchService, publisher, conf.AbandonGrace)

	srv := server.NewServer(registry, playerRepo, matchRepo, playerController, matchController)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    ":" + conf.HTTPPort,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "port", conf.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("server exiting")
}
