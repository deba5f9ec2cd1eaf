package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bachatbox/bachatbox/internal/domain/goals"
	"github.com/bachatbox/bachatbox/internal/domain/transactions"
	"github.com/bachatbox/bachatbox/internal/domain/wallet"
	importhandler "github.com/bachatbox/bachatbox/internal/importer/handler"
	importservice "github.com/bachatbox/bachatbox/internal/importer/service"
	"github.com/bachatbox/bachatbox/internal/storage"
	"github.com/bachatbox/bachatbox/internal/storage/memory"
	"github.com/bachatbox/bachatbox/internal/storage/postgres"
	"github.com/bachatbox/bachatbox/pkg/config"
	"github.com/bachatbox/bachatbox/pkg/cron"
	"github.com/bachatbox/bachatbox/pkg/filestore"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Store  storage.Store
	Logger *slog.Logger

	// Services
	Index               *transactions.Index
	Archive             *filestore.Archive
	Scheduler           *cron.Scheduler
	TransactionsService *transactions.Service
	GoalsService        *goals.Service
	WalletService       *wallet.Service
	ImportService       *importservice.Service

	// Handlers
	TransactionsHandler *transactions.Handler
	GoalsHandler        *goals.Handler
	WalletHandler       *wallet.Handler
	ImportHandler       *importhandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStore opens the configured backend: postgres when a DSN is set,
// otherwise the in-memory store, optionally seeded with demo data.
func (d *Dependencies) initStore(ctx context.Context) error {
	if d.Config.Database.UsePostgres() {
		store, err := postgres.Connect(ctx, d.Config.Database.DSN())
		if err != nil {
			return err
		}
		d.Store = store
		d.Logger.Info("database connected and migrations completed successfully")
		return nil
	}

	store := memory.New()
	if d.Config.Server.SeedDemoData {
		if err := store.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		d.Logger.Info("in-memory store seeded with demo data")
	}
	d.Store = store
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	index, err := transactions.NewIndex()
	if err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}
	d.Index = index

	d.TransactionsService = transactions.NewService(d.Store, d.Index, d.Logger)
	if err := d.TransactionsService.Rebuild(ctx, storage.DemoUserID); err != nil {
		d.Logger.Warn("failed to rebuild search index", slog.Any("error", err))
	}

	d.GoalsService = goals.NewService(d.Store, d.Logger)
	d.WalletService = wallet.NewService(d.Store, d.Logger)

	// Import service with the search index wired in so new rows are
	// queryable without a restart
	d.ImportService = importservice.New(d.Store, d.Logger)
	d.ImportService.SetIndexer(d.Index)

	// Upload archive for original statement files
	if d.Config.Archive.Path != "" {
		archive, err := filestore.New(d.Config.Archive.Path)
		if err != nil {
			return fmt.Errorf("failed to init upload archive: %w", err)
		}
		d.Archive = archive
	}

	retention := time.Duration(d.Config.Archive.RetentionDays) * 24 * time.Hour
	d.Scheduler = cron.NewScheduler(d.TransactionsService, d.Archive, retention, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.TransactionsHandler = transactions.NewHandler(d.TransactionsService, d.Logger)
	d.GoalsHandler = goals.NewHandler(d.GoalsService, d.Logger)
	d.WalletHandler = wallet.NewHandler(d.WalletService, d.Logger)
	d.ImportHandler = importhandler.New(d.ImportService, d.Store, d.Logger)
	if d.Archive != nil {
		d.ImportHandler.WithArchive(d.Archive)
	}

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Index != nil {
		if err := d.Index.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.Store != nil {
		d.Store.Close()
	}
	d.Logger.Info("cleanup completed")
}
