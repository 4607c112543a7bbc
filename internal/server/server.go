// Package server assembles the HTTP gateway in front of the food service.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/metrics"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/middleware"
)

// Options holds the router dependencies.
type Options struct {
	Service        handlers.FoodService
	Health         *handlers.HealthHandler
	Logger         *slog.Logger
	RequestTimeout time.Duration
	// APIKeys guard the write routes. Empty leaves them open.
	APIKeys        []string
}

// NewRouter builds the gateway routes.
func NewRouter(opts Options) http.Handler {
	if opts.Health == nil {
		opts.Health = handlers.NewHealthHandler(opts.Logger)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	foodHandler := handlers.NewFoodHandler(opts.Service, opts.Logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	r.Use(metrics.InstrumentHTTP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", opts.Health.ServeHTTP)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/foods", foodHandler.ListFoods)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(opts.APIKeys, opts.Logger))
			r.Post("/foods", foodHandler.CreateFood)
			r.Put("/foods/{foodId}", foodHandler.UpdateFood)
			r.Delete("/foods/{foodId}", foodHandler.DeleteFood)
		})
	})

	return r
}

// Run serves srv until ctx is done, then shuts it down gracefully.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", srv.Addr)
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

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
