package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tanmay/corebank/backend/internal/blob"
	"github.com/tanmay/corebank/backend/internal/config"
	"github.com/tanmay/corebank/backend/internal/docextract"
	"github.com/tanmay/corebank/backend/internal/ingest"
	"github.com/tanmay/corebank/backend/internal/logging"
	"github.com/tanmay/corebank/backend/internal/repository"
	"github.com/tanmay/corebank/backend/internal/warehouse"
)

func main() {
	var (
		prefix    = flag.String("prefix", "", "Object prefix to scan for PDF forms (overrides BLOB_FORMS_PREFIX)")
		workers   = flag.Int("workers", 4, "Number of concurrent document processors")
		batchSize = flag.Int("batch-size", 50, "Rows accumulated before each warehouse flush")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Warehouse.ProjectID == "" {
		logger.Error("PROJECT_ID is required for ingestion")
		os.Exit(1)
	}

	warehouseClient, err := warehouse.NewBigQueryClient(ctx, warehouse.Options{
		ProjectID: cfg.Warehouse.ProjectID,
		Location:  cfg.Warehouse.Location,
	})
	if err != nil {
		logger.Error("failed to create warehouse client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := warehouseClient.Close(); err != nil {
			logger.Warn("closing warehouse client failed", "error", err)
		}
	}()

	if err := warehouseClient.VerifyConnectivity(ctx); err != nil {
		logger.Error("warehouse unreachable", "error", err)
		os.Exit(1)
	}

	store, err := buildBlobStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing blob store failed", "error", err)
		}
	}()

	extractor, err := docextract.NewDocAIExtractor(ctx, docextract.Options{
		ProjectID:   cfg.Extractor.ProjectID,
		Location:    cfg.Extractor.Location,
		ProcessorID: cfg.Extractor.ProcessorID,
	})
	if err != nil {
		logger.Error("failed to create document extractor", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := extractor.Close(); err != nil {
			logger.Warn("closing document extractor failed", "error", err)
		}
	}()

	repo := repository.New(warehouseClient, repository.Tables{
		Dataset:           cfg.Warehouse.Dataset,
		HistoryTable:      cfg.Warehouse.HistoryTable,
		ApplicationsTable: cfg.Warehouse.ApplicationsTable,
	})

	pipeline := ingest.New(store, extractor, repo, logger, ingest.Options{
		Workers:   *workers,
		BatchSize: *batchSize,
	})

	scanPrefix := cfg.Blob.FormsPrefix
	if *prefix != "" {
		scanPrefix = *prefix
	}

	start := time.Now()
	logger.Info("starting batch ingestion", "prefix", scanPrefix, "workers", *workers)

	stats, err := pipeline.Run(ctx, scanPrefix)
	if err != nil {
		var taskErr *ingest.TaskError
		if errors.As(err, &taskErr) {
			// Partial failure: report and keep the rows that made it.
			logger.Warn("ingestion finished with document failures",
				"listed", stats.Listed,
				"inserted", stats.Inserted,
				"failed", stats.Failed,
				"errors", taskErr.Error(),
			)
			os.Exit(1)
		}
		logger.Error("ingestion aborted", "error", err)
		os.Exit(1)
	}

	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"listed", stats.Listed,
		"inserted", stats.Inserted,
	)
}

func buildBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	if cfg.Blob.Bucket != "" {
		return blob.NewGCSStore(ctx, blob.Options{Bucket: cfg.Blob.Bucket})
	}
	return blob.NewFSStore(cfg.Blob.LocalRoot)
}
