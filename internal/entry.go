// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/echonotes/internal/api"
	"github.com/starford/echonotes/internal/dashboard"
	"github.com/starford/echonotes/internal/kvstore"
	"github.com/starford/echonotes/internal/mcpserver"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/notes"
	"github.com/starford/echonotes/internal/settings"
	"github.com/starford/echonotes/internal/sse"
	"github.com/starford/echonotes/internal/storage"
	"github.com/starford/echonotes/internal/vault"
	"github.com/starford/echonotes/internal/workspaces"
)

// runtime is the object graph shared by the HTTP server and the MCP server.
type runtime struct {
	logger     *slog.Logger
	db         *kvstore.DB
	vault      *vault.Vault
	shell      *dashboard.Shell
	workspaces *workspaces.Service
}

func (rt *runtime) close() {
	rt.shell.Close()
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close database", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (app *application) newLogger() *slog.Logger {
	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// bootstrap opens the database and the vault, loads (or seeds) the notes and
// builds the dashboard over them.
func bootstrap(ctx context.Context, cfg *Config, logger *slog.Logger, shellOpts ...dashboard.Option) (*runtime, error) {
	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := kvstore.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	v := vault.New(store, logger)
	loaded, err := loadNotes(ctx, v, cfg.Dashboard.SeedSamples, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	noteStore := notes.NewStore(loaded, notes.WithFolders(cfg.Dashboard.Folders))
	repo := settings.NewRepository(db, logger)
	opts := append([]dashboard.Option{
		dashboard.WithLogger(logger),
		dashboard.WithPersister(v),
	}, shellOpts...)
	shell := dashboard.New(ctx, noteStore, repo, cfg.Dashboard.ShellConfig(cfg.Graph), opts...)

	return &runtime{
		logger:     logger,
		db:         db,
		vault:      v,
		shell:      shell,
		workspaces: workspaces.NewService(db, logger),
	}, nil
}

func loadNotes(ctx context.Context, v *vault.Vault, seed bool, logger *slog.Logger) ([]models.Note, error) {
	empty, err := v.Empty(ctx)
	if err != nil {
		return nil, fmt.Errorf("inspect vault: %w", err)
	}
	if empty && seed {
		return v.Seed(ctx, vault.SampleNotes())
	}
	loaded, err := v.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vault: %w", err)
	}
	logger.Info("Vault loaded", slog.Int("notes", len(loaded)))
	return loaded, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker carries toasts and change events to the browser.
	broker := sse.NewBroker(cfg.Graph.SSEThrottle)
	defer broker.Close()

	rt, err := bootstrap(ctx, cfg, logger,
		dashboard.WithNotifier(broker),
		dashboard.WithEvents(broker),
	)
	if err != nil {
		return err
	}
	defer rt.close()

	apiRouter := api.NewRouter(rt.shell, rt.workspaces, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rt.db.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Feed external vault edits into the dashboard.
	g.Go(func() error {
		if err := rt.vault.Watch(gCtx, cfg.Vault.Path, rt.shell, vault.DefaultDebounce); err != nil {
			logger.Warn("vault watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		// Ends open SSE streams so Shutdown does not wait on them.
		broker.Close()

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

// errShutdown cancels the group once a shutdown has been requested, which
// stops the vault watcher.
var errShutdown = errors.New("shutdown requested")

// RunMCP serves the MCP tools on stdin/stdout over the same vault and
// database as the HTTP server.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	rt, err := bootstrap(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	logger.Info("MCP server starting", slog.String("vault_path", app.config.Vault.Path))
	return mcpserver.New(rt.shell, app.version).ServeStdio()
}
