// Package main is the entry point for the shift calendar API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pkordes/shiftbook/internal/config"
	"github.com/pkordes/shiftbook/internal/handler"
	"github.com/pkordes/shiftbook/internal/middleware"
	"github.com/pkordes/shiftbook/internal/repo"
	"github.com/pkordes/shiftbook/internal/service"
	"github.com/pkordes/shiftbook/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON to stdout, and to a rotating file as well when LOG_FILE is set.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		defer fileWriter.Close()
		out = io.MultiWriter(os.Stdout, fileWriter)
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	store, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open shift store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("shift store ready", "driver", cfg.StoreDriver)

	// --- Services ---------------------------------------------------------
	shifts := service.NewShiftService(store, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srvHandler := handler.NewServer(shifts, logger)
	r.Mount("/", srvHandler.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The event stream clears its own write deadline.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Open event streams never finish on their own; end them on shutdown.
	srv.BaseContext = func(_ net.Listener) context.Context { return ctx }

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore builds the DocumentStore selected by cfg.StoreDriver, applying
// migrations first when cfg.AutoMigrate is set. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config) (repo.DocumentStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if cfg.AutoMigrate {
			sqlDB := stdlib.OpenDBFromPool(pool)
			n, err := migrations.Up(ctx, goose.DialectPostgres, sqlDB)
			sqlDB.Close()
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
			slog.Info("migrations applied", "count", n)
		}
		// The pool serves queries and lends one connection per live subscription.
		return repo.NewPostgresStore(pool, pool), pool.Close, nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			n, err := migrations.Up(ctx, goose.DialectSQLite3, db)
			if err != nil {
				db.Close()
				return nil, nil, err
			}
			slog.Info("migrations applied", "count", n)
		}
		return repo.NewSQLiteStore(db), func() { db.Close() }, nil

	case config.DriverMemory:
		slog.Warn("using in-memory shift store; records are lost on restart")
		return repo.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
