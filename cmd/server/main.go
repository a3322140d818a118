// Command server runs the fleet operations API: multi-tenant HTTP and
// WebSocket endpoints backed by one SQLite database per tenant.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"fleetops/internal/api"
	"fleetops/internal/config"
	"fleetops/internal/db"
	"fleetops/internal/db/repository"
	"fleetops/internal/hub"
	"fleetops/internal/pipeline"
	"fleetops/internal/service/fleet"
	"fleetops/internal/tenant"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if err := os.MkdirAll(cfg.TenantDBDir, 0o750); err != nil {
		return err
	}

	// Master store holds only the tenant directory. Tenant data lives in
	// per-tenant database files under TenantDBDir.
	masterWrite, masterRead, err := db.OpenSQLitePair(cfg.MasterDBPath, 4)
	if err != nil {
		return err
	}
	defer masterWrite.Close()
	defer masterRead.Close()
	if err := db.RunMasterMigrations(masterWrite); err != nil {
		return err
	}

	directory := repository.NewTenantRepo(masterRead)
	resolver := tenant.NewResolver(directory, cfg.TenantDBDir, logger)
	defer resolver.Close()

	janitor := tenant.NewJanitor(resolver, directory, cfg.ScopeIdleTTL, cfg.NotificationRetention, logger)
	if err := janitor.Start(); err != nil {
		return err
	}
	defer janitor.Stop()

	metrics := hub.NewMetrics(prometheus.DefaultRegisterer)
	registry := hub.NewRegistry(metrics)
	defer registry.Close()
	broadcast := hub.New(registry, metrics, logger)

	svc := fleet.NewService(broadcast, logger)
	pipe := pipeline.New(resolver, fleet.Authorize, logger)
	handler := api.NewHandler(pipe, svc, registry, cfg.HubSendBuffer, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
