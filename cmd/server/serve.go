package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/datadeck-io/datadeck/internal/analysis"
	"github.com/datadeck-io/datadeck/internal/api"
	"github.com/datadeck-io/datadeck/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	if cfg == nil {
		return errors.New("configuration not loaded")
	}

	// Initialize Services
	registry := session.NewRegistry(cfg.SessionTTL())
	handler := api.NewHandler(analysis.NewService(), registry, cfg.Upload.MaxBytes)

	// Session janitor runs until shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.StartJanitor(ctx, cfg.SweepInterval())

	// Router Setup
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// CORS - Allow frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("DataDeck backend is running"))
	})

	// Register all API Routes
	handler.RegisterRoutes(r)

	// PORT env wins over config for container deploys
	port := strconv.Itoa(cfg.Server.Port)
	if env := os.Getenv("PORT"); env != "" {
		port = env
	}

	log.Printf("🚀 Starting DataDeck backend on http://localhost:%s", port)
	log.Printf("📡 CORS enabled for: %v", cfg.Server.CORSOrigins)
	log.Printf("🧹 Session TTL %s, sweep every %s", cfg.SessionTTL(), cfg.SweepInterval())

	srv := &http.Server{Addr: ":" + port, Handler: r}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
		log.Printf("🛑 Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
