package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/driftchat/driftchat/internal/chat"
	"github.com/driftchat/driftchat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes before the
// process exits.
func run() error {
	// A local .env is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := server.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Single room for now; the registry and typing state live inside it.
	room := chat.NewRoom("main", log.With("component", "room"))
	go room.Run(ctx)

	handler := server.NewHandler(room, cfg, log.With("component", "server"))
	srv := server.NewHTTPServer(cfg.Port, handler.Routes())

	errChan := make(chan error, 1)
	go func() {
		log.Info("chat relay listening", "addr", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down gracefully")
	case err := <-errChan:
		return err
	}

	return server.ShutdownServer(srv, cfg.ShutdownTimeout, log)
}
