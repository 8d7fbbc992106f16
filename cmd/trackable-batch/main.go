package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackable-ai/trackable/internal/common"
	"github.com/trackable-ai/trackable/internal/export"
	"github.com/trackable-ai/trackable/internal/ingest"
	repo "github.com/trackable-ai/trackable/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of candidate JSON files to reconcile (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		userStr = flag.String("user", "", "user id to export after ingest (optional)")
		workers = flag.Int("workers", 4, "number of reconcile workers")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "orders.xlsx")
	}

	var exportUser *uuid.UUID
	if *userStr != "" {
		parsed, err := uuid.Parse(*userStr)
		if err != nil {
			printError("Error: invalid --user id: %v\n", err)
			os.Exit(1)
		}
		exportUser = &parsed
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

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

	svc := ingest.NewService(db, cfg.Ingest, logger)
	queue := ingest.NewReconcileQueue(svc, logger, ingest.WithWorkers(*workers))

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("failed to read candidate directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	queued := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read candidate file", "path", path, "error", err)
			continue
		}
		cand, err := ingest.ParseOrderCandidate(data)
		if err != nil {
			logger.Error("skipping malformed candidate", "path", path, "error", err)
			continue
		}
		if queue.Enqueue(ctx, cand) {
			queued++
		}
	}
	logger.Info("candidates queued", "count", queued, "dir", *dir)

	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	queue.Shutdown(drainCtx)
	cancel()

	if exportUser == nil {
		return
	}

	ordersRepo := repo.NewOrderRepository(db, logger)
	merchantsRepo := repo.NewMerchantRepository(db, logger)
	exporter := export.NewService(ordersRepo, merchantsRepo, logger)

	xlsx, err := exporter.ExportOrdersXLSX(ctx, *exportUser, 0)
	if err != nil {
		logger.Error("export failed", "user_id", exportUser, "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write export file", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "user_id", exportUser)
}
