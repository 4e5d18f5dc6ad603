// Package main runs the local stand-in for the travel journal API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkordes/travel-journal/internal/devserver"
	"github.com/pkordes/travel-journal/internal/middleware"
)

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:8080", "listen address")
		dbPath    = flag.String("db", "journal.db", "SQLite database file")
		photoDir  = flag.String("photo-dir", "photos", "directory for uploaded photo files")
		jwtSecret = flag.String("jwt-secret", "dev-only-secret", "HMAC secret for issued tokens")
		logLevel  = flag.String("log-level", "info", "minimum log level (debug, info, warn, error)")
		origins   = flag.String("cors-origins", "", "comma-separated origins allowed to call the API from a browser")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(*photoDir, 0o755); err != nil {
		logger.Error("create photo directory", "dir", *photoDir, "error", err)
		os.Exit(1)
	}

	store, err := devserver.OpenStore(*dbPath)
	if err != nil {
		logger.Error("open store", "db", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("store opened", "db", *dbPath)

	handler := devserver.NewServer(store, *jwtSecret, *photoDir, logger).Handler()
	if *origins != "" {
		handler = middleware.NewCORSHandler(strings.Split(*origins, ","))(handler)
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for an OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("dev server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
