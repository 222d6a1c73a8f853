package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tanmay/corebank/backend/internal/blob"
	"github.com/tanmay/corebank/backend/internal/config"
	"github.com/tanmay/corebank/backend/internal/inbox"
	"github.com/tanmay/corebank/backend/internal/logging"
	"github.com/tanmay/corebank/backend/internal/repository"
	"github.com/tanmay/corebank/backend/internal/scoring"
	"github.com/tanmay/corebank/backend/internal/server"
	"github.com/tanmay/corebank/backend/internal/service"
	"github.com/tanmay/corebank/backend/internal/warehouse"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	warehouseClient, err := buildWarehouseClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to create warehouse client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := warehouseClient.Close(); err != nil {
			logger.Warn("closing warehouse client failed", "error", err)
		}
	}()

	repo := repository.New(warehouseClient, repository.Tables{
		Dataset:           cfg.Warehouse.Dataset,
		HistoryTable:      cfg.Warehouse.HistoryTable,
		ApplicationsTable: cfg.Warehouse.ApplicationsTable,
	})
	scorer := scoring.NewBQMLScorer(warehouseClient, scoring.Options{
		Dataset: cfg.Warehouse.Dataset,
		Model:   cfg.Warehouse.Model,
	})
	decisions := service.NewDecisionService(repo, scorer, service.Options{
		LookupTimeout:  cfg.Decision.LookupTimeout,
		ScoringTimeout: cfg.Decision.ScoringTimeout,
	})

	inboxReader, blobStore := buildInbox(ctx, logger, cfg)
	if blobStore != nil {
		defer func() {
			if err := blobStore.Close(); err != nil {
				logger.Warn("closing blob store failed", "error", err)
			}
		}()
	}

	apiHandlers := server.NewAPIHandlers(logger, decisions, inboxReader)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.WarehouseHealthService{Client: warehouseClient},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildWarehouseClient(ctx context.Context, cfg config.Config) (warehouse.Client, error) {
	if cfg.Warehouse.ProjectID == "" {
		return nil, errors.New("PROJECT_ID environment variable must be set")
	}
	return warehouse.NewBigQueryClient(ctx, warehouse.Options{
		ProjectID: cfg.Warehouse.ProjectID,
		Location:  cfg.Warehouse.Location,
	})
}

// buildInbox wires the pending-application reader when a blob location is
// configured. The server stays useful without one; inbox routes then report
// the feature as unavailable.
func buildInbox(ctx context.Context, logger *slog.Logger, cfg config.Config) (server.InboxReader, blob.Store) {
	store, err := buildBlobStore(ctx, cfg)
	if err != nil {
		logger.Warn("inbox disabled", "error", err)
		return nil, nil
	}
	return inbox.NewReader(store, cfg.Blob.InboxPrefix), store
}

func buildBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	if cfg.Blob.Bucket != "" {
		return blob.NewGCSStore(ctx, blob.Options{Bucket: cfg.Blob.Bucket})
	}
	return blob.NewFSStore(cfg.Blob.LocalRoot)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
