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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/icco/movies/handlers"
	"github.com/icco/movies/lib/config"
	"github.com/icco/movies/lib/db"
	"github.com/icco/movies/lib/health"
	"github.com/icco/movies/lib/logging"
	"github.com/icco/movies/lib/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type App struct {
	cfg    *config.Config
	db     *gorm.DB
	store  *db.Store
	router *chi.Mux
	logger *slog.Logger
}

func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	gormDB, err := db.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(gormDB, logger); err != nil {
		_ = db.Close(gormDB)
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	app := &App{
		cfg:    cfg,
		db:     gormDB,
		store:  db.NewStore(gormDB),
		router: chi.NewRouter(),
		logger: logger,
	}

	app.setupRoutes()
	return app, nil
}

// corsMethods is every standard HTTP method, so allowed origins may use any
// method the router serves.
var corsMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace,
}

func (a *App) setupRoutes() {
	a.router.Use(chimiddleware.RealIP)
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Observe(a.logger))
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORS.AllowedOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	a.router.Get("/health", health.Check(a.store))
	if a.cfg.Metrics.Enabled {
		a.router.Handle("/metrics", promhttp.Handler())
	}

	a.router.Route("/api/movies", func(r chi.Router) {
		r.Get("/", handlers.HandleListMovies(a.store))
		r.Post("/", handlers.HandleCreateMovie(a.store))
		r.Get("/{id}", handlers.HandleGetMovie(a.store))
		r.Put("/{id}", handlers.HandleUpdateMovie(a.store))
		r.Delete("/{id}", handlers.HandleDeleteMovie(a.store))
	})
}

// Close releases the database connection pool.
func (a *App) Close() error {
	return db.Close(a.db)
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for at most the configured shutdown timeout.
func (a *App) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server", slog.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger)

	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.serve(ctx); err != nil {
		logger.Error("Server error", slog.Any("error", err))
		stop()
		_ = app.Close()
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
