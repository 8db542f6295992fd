// Command mockapi serves an in-memory marketplace backend for local work on the back-office client.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/config"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/logging"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/metrics"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/transport/mockapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// init configures standard logger flags / Configure les flags du logger standard
func init() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.LstdFlags)
}

// main is the application entry point / Point d'entrée de l'application
func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

// run initializes and starts the HTTP server / Initialise et démarre le serveur HTTP
func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLogs := logging.Setup(cfg.Logging, cfg.IsProduction(), os.Stdout)
	defer closeLogs()
	slog.SetDefault(logger)

	logStartupInfo(cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	store := mockapi.NewStore()
	if cfg.MockAPI.Seed {
		mockapi.Seed(store)
		slog.Info("sample data loaded", "store", store.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mockapi.NewServer(ctx, mockapi.Options{
		Store:          store,
		Metrics:        m,
		Gatherer:       reg,
		RequireAuth:    cfg.MockAPI.RequireAuth,
		JWTSecret:      cfg.MockAPI.JWTSecret,
		RateLimit:      cfg.MockAPI.RateLimit,
		TrustedProxies: cfg.MockAPI.TrustedProxies,
		Timeout:        cfg.MockAPI.WriteTimeout,
		Version:        version,
	})
	defer server.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.MockAPI.Port,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.MockAPI.ReadTimeout,
		WriteTimeout: cfg.MockAPI.WriteTimeout,
		IdleTimeout:  cfg.MockAPI.IdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("mock API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("shutting down server gracefully")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

// logStartupInfo displays startup information / Affiche les informations de démarrage
func logStartupInfo(cfg *config.Config) {
	slog.Info("🚀 Starting mock API",
		"environment", cfg.Environment,
		"port", cfg.MockAPI.Port,
		"version", version,
	)

	if rl := cfg.MockAPI.RateLimit; rl.Enabled {
		slog.Info("🛡️  Rate limiter enabled", "rps", rl.RPS, "burst", rl.Burst)
	} else {
		slog.Warn("⚠️  Rate limiter is DISABLED")
	}

	if cfg.MockAPI.RequireAuth {
		slog.Info("🔒 Bearer token required on /api", "token_endpoint", cfg.MockAPI.JWTSecret != "")
	}
}
