package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"roomchat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires configuration, the hub, and the HTTP server together and blocks
// until a shutdown signal arrives. Returning the error to main keeps the
// defers running and the exit path in one place.
func run() error {
	// A .env file is optional; the real environment always wins.
	_ = godotenv.Load()

	cfg, err := server.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupLogger(cfg.LogLevel)

	hub := server.NewHub(cfg)
	go hub.Run()

	httpServer := server.CreateServer(cfg.Addr, server.SetupRoutes(hub))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.StartServer(httpServer)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received")

	// Stop accepting new connections first, then close the live ones.
	if err := server.ShutdownServer(httpServer, 10*time.Second); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	if err := hub.Shutdown(5 * time.Second); err != nil {
		slog.Error("hub shutdown error", "error", err)
	}
	return <-serverErr
}

func setupLogger(level string) {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}
