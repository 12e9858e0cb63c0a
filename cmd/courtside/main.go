package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/api"
	"courtside/auth"
	"courtside/conversations"
	"courtside/membership"
	"courtside/moderation"
	"courtside/repositories"
	"courtside/runtime"
	"courtside/runtime/workers"
	"courtside/search"
	"courtside/services"
	"courtside/storage"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Courtside terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanups always execute.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB, Bluge, media bucket)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	bucket, err := storage.NewBucket(config.MediaRoot, logger)
	if err != nil {
		return exitRuntime, err
	}

	// 3. Repositories
	accounts := repositories.NewAccountRepository(db)
	profiles := repositories.NewProfileRepository(db, logger)
	games := repositories.NewGameRepository(db, logger)
	participations := repositories.NewParticipationRepository(db, logger)
	messages := repositories.NewMessageRepository(db, logger)

	// 4. Realtime hub under supervision
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	hub := runtime.NewHub(logger, supervisor, registry, config.BufferSize, config.SinkTimeout)
	supervisor.Add(workers.NewHealthWorker(logger, config.MetricInterval))

	messageWriter := runtime.NewMessageWriter(messages, hub)

	// 5. Moderation
	censored, err := runtime.LoadCensoredWords()
	if err != nil {
		return exitRuntime, fmt.Errorf("censored wordlist loading failed: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, config.censorRune(), logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator build failed: %w", err)
	}

	// 6. Core components and services
	gameIndex := search.NewGameIndex(blugeWriter, logger)
	reconciler := membership.NewReconciler(logger, games, participations, messageWriter, profiles)
	aggregator := conversations.NewAggregator(logger, games, participations)
	gateway := auth.NewGateway()

	authService := services.NewAuthService(logger, accounts, profiles, gateway, config.AuthTokenDuration)
	gameService := services.NewGameService(logger, games, reconciler, gameIndex, hub)
	chatService := services.NewChatService(logger, messageWriter, profiles, hub, moderator)
	profileService := services.NewProfileService(logger, profiles, bucket)

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub.Start(ctx)
	defer hub.Stop()

	// 8. HTTP server
	server := api.NewServer(logger, authService, gameService, chatService, profileService, aggregator, bucket)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", config.Port),
		Handler: server.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, fmt.Errorf("http server error: %w", err)
	}

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("http shutdown error: %w", err)
	}

	return exitOK, nil
}
