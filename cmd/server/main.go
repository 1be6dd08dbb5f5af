/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance and leave server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (defaults, .env, environment, flags)
  2. Build the logger
  3. Open the storage backend (JSON file or SQLite) and load the document
  4. Create services and the API handler
  5. Bootstrap the default admin (unless disabled)
  6. Configure HTTP router
  7. Start the flush scheduler (if an interval is set)
  8. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port            HTTP server port (default: 8080)
  -driver          Storage backend, "json" or "sqlite" (default: json)
  -db              Path of the JSON document or SQLite database (default: db.json)
                   Use ":memory:" with -driver=sqlite for a throwaway database
  -log-level       debug | info | warn | error
  -flush-interval  Periodic flush, e.g. 1m (default: 0, disabled)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler (final flush)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with the default JSON document
  ./server

  # Run with SQLite
  ./server -driver=sqlite -db="./data/attendance.db"

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  See config/config.go. Every flag has an ATTENDANCE_* equivalent.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Settings and precedence
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/identity"
	"github.com/warp/attendance-engine/leave"
	"github.com/warp/attendance-engine/logging"
	"github.com/warp/attendance-engine/records"
	"github.com/warp/attendance-engine/store/jsonfile"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	// chi's request logger writes through the standard logger.
	slog.SetDefault(logger.Slog())

	if err := run(cfg, logger); err != nil {
		logger.Error(context.Background(), "server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.SlogLogger) error {
	ctx := context.Background()

	// Initialize store
	backend, closer, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closer.Close()

	store := records.NewStore(backend)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	// Initialize services
	warnInsecureDefaults(ctx, cfg, logger)
	tokens, err := identity.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	ids := identity.NewService(store, identity.NewBcryptHasher(), tokens, logger.With("component", "identity"))
	att := attendance.NewService(store, logger.With("component", "attendance"))
	leaves := leave.NewService(store, logger.With("component", "leave"))

	if cfg.BootstrapAdmin {
		if _, err := ids.BootstrapAdmin(ctx); err != nil {
			logger.Warn(ctx, "default admin bootstrap failed", "err", err)
		}
	}

	// Initialize handler
	handler := api.NewHandler(store, att, leaves, ids, logger.With("component", "api"))

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: cfg.CORSOrigins})

	scheduler := api.NewFlushScheduler(store, cfg.FlushInterval, logger.With("component", "scheduler"))
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", server.Addr, "driver", cfg.Driver, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info(ctx, "server stopped")
	return nil
}

// warnInsecureDefaults logs development-only settings that are active.
func warnInsecureDefaults(ctx context.Context, cfg *config.Config, logger logging.Logger) {
	if cfg.UsesDefaultSecret() {
		logger.Warn(ctx, "using the default JWT secret, set ATTENDANCE_JWT_SECRET outside development")
	}
}

// openBackend returns the configured backend and whatever must be closed on
// exit.
func openBackend(cfg *config.Config) (records.Backend, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return jsonfile.New(cfg.DBPath), io.NopCloser(nil), nil
	}
}
