package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/pienissimo/opsdash/internal/api"
	"github.com/pienissimo/opsdash/internal/config"
	"github.com/pienissimo/opsdash/internal/inbox"
	"github.com/pienissimo/opsdash/internal/ingest"
	"github.com/pienissimo/opsdash/internal/kpi"
	"github.com/pienissimo/opsdash/internal/pkg/distlock"
	"github.com/pienissimo/opsdash/internal/pkg/logger"
	"github.com/pienissimo/opsdash/internal/report"
	"github.com/pienissimo/opsdash/internal/repository/postgres"
	"github.com/pienissimo/opsdash/internal/zoho"
)

// checkPortAvailable verifies that the target port is not already in use,
// so a stale process fails the boot instead of shadowing it.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %v", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPII)

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("database ready")

	// Redis is optional: without it every dashboard request recomputes.
	var cache *kpi.Cache
	if cfg.Redis.Enabled {
		cache, err = kpi.NewCache(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, snapshot cache disabled", "error", err)
			cache = nil
		} else {
			logger.Info("redis connected", "addr", cfg.Redis.Addr)
		}
	}

	svc := kpi.NewService(store, cache)
	importer := ingest.NewImporter(store)

	handlers := &api.Handlers{
		Importer:    importer,
		KPI:         svc,
		Reporter:    report.NewRenderer(),
		Timesheet:   store,
		DB:          store,
		MaxUploadMB: cfg.Server.MaxUploadMB,
	}

	if cfg.Zoho.Enabled {
		syncer := zoho.NewSyncer(cfg.Zoho, store)
		syncer.OnSync = svc.Invalidate
		handlers.Syncer = syncer
		go syncer.Run(ctx)
		logger.Info("zoho desk sync enabled",
			"interval_minutes", cfg.Zoho.SyncIntervalMinutes,
			"departments", len(cfg.Zoho.DepartmentIDs))
	}

	if cfg.Inbox.Enabled {
		poller, err := inbox.New(ctx, cfg.Inbox, importer)
		if err != nil {
			log.Fatalf("Failed to initialize S3 inbox: %v", err)
		}
		poller.OnImport = svc.Invalidate
		// One replica drains the folder at a time.
		lockTTL := time.Duration(cfg.Inbox.IntervalMinutes) * time.Minute
		if cache != nil {
			poller.Lock = distlock.NewLock(cache.Client(), store.DB(), "inbox:poll", lockTTL)
		} else {
			poller.Lock = distlock.NewLock(nil, store.DB(), "inbox:poll", lockTTL)
		}
		go poller.Run(ctx)
		logger.Info("s3 inbox polling enabled",
			"bucket", cfg.Inbox.S3Bucket, "prefix", cfg.Inbox.Prefix)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      api.SetupRoutes(handlers, cfg.Server.CORSOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
