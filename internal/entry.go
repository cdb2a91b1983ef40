// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/martini/internal/api"
	"github.com/starford/martini/internal/command"
	"github.com/starford/martini/internal/console"
	"github.com/starford/martini/internal/index"
	"github.com/starford/martini/internal/listservice"
	"github.com/starford/martini/internal/mcpserver"
	"github.com/starford/martini/internal/sse"
	"github.com/starford/martini/internal/storage"
	"github.com/starford/martini/internal/store"
)

// runtime holds the components shared by every transport.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	fs      *storage.FS
	db      *index.DB
	router  *command.Router
	service *listservice.Service
	closers []io.Closer
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		version: "dev",
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// bootstrap builds the logger, storage, index, store and service. logOut is
// the primary log destination.
func bootstrap(cfg *Config, logOut io.Writer) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	if cfg.App.LogFile != "" {
		f, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		rt.closers = append(rt.closers, f)
		logOut = io.MultiWriter(logOut, f)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	rt.logger = logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		rt.Close()
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	fs, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	rt.fs = fs

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init index: %w", err)
	}
	rt.db = db
	rt.closers = append(rt.closers, db)

	if err := index.Sync(db, fs, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	st := store.New(fs, logger)
	rt.router = command.NewRouter(st, logger)
	rt.service = listservice.NewService(st, rt.router, db)
	return rt, nil
}

// Run starts the HTTP server and the index watcher and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	rt, err := bootstrap(app.config, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	logger := rt.logger

	broker := sse.NewBroker()
	defer broker.Close()

	apiRouter := api.NewRouter(rt.service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, cfg.App.HTTP.RateLimit, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rt.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Index watcher; every change is forwarded to SSE clients.
	g.Go(func() error {
		err := index.Watch(gCtx, rt.db, rt.fs, cfg.Data.Path, logger, func(kind string, chatID int64) {
			broker.PublishListEvent(kind, chatID)
		})
		if err != nil {
			logger.Warn("watcher: disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context once the HTTP server has been
// shut down, so the watcher stops too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the list tools over MCP stdio. Logs go to stderr because
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	rt, err := bootstrap(app.config, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting (stdio)")
	if err := mcpserver.New(rt.service, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

// RunConsole reads chat messages for chatID line by line from the
// configured input and writes each reply to the configured output.
func RunConsole(ctx context.Context, chatID int64, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	rt, err := bootstrap(app.config, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt.logger.Info("console: reading messages", slog.Int64("chat_id", chatID))
	return console.Run(ctx, app.stdin, app.stdout, chatID, rt.router, rt.logger)
}
