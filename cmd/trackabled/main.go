package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trackable-ai/trackable/internal/common"
	repo "github.com/trackable-ai/trackable/internal/repository"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	ordersRepo := repo.NewOrderRepository(db, logger)

	// Periodic sweep over monitored orders whose return window is closing.
	// Extraction producers push candidates through the ingest service from
	// their own processes; this daemon only owns the scheduled work.
	ticker := time.NewTicker(cfg.Refresh.Interval)
	defer ticker.Stop()

	logger.Info("trackabled started",
		"refresh_interval", cfg.Refresh.Interval,
		"expiry_scan_days", cfg.Refresh.ExpiryScanDays)

	scan := func() {
		expiring, err := ordersRepo.GetOrdersWithExpiringReturnWindow(ctx, cfg.Refresh.ExpiryScanDays, nil)
		if err != nil {
			logger.Error("return window scan failed", "error", err)
			return
		}
		for _, o := range expiring {
			logger.Info("return window closing",
				"order_id", o.ID,
				"user_id", o.UserID,
				"return_window_end", o.ReturnWindowEnd)
		}
		logger.Info("return window scan complete", "expiring", len(expiring))
	}

	scan()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
			scan()
		}
	}
}
