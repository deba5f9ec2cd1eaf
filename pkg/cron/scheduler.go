// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bachatbox/bachatbox/internal/domain/transactions"
	"github.com/bachatbox/bachatbox/internal/storage"
	"github.com/bachatbox/bachatbox/pkg/filestore"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	txService *transactions.Service
	archive   *filestore.Archive
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler. A nil archive disables the
// prune job.
func NewScheduler(txService *transactions.Service, archive *filestore.Archive, retention time.Duration, logger *slog.Logger) *Scheduler {
	// Standard 5-field format, no seconds
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		txService: txService,
		archive:   archive,
		retention: retention,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Search index rebuild: runs daily at 2:00 AM
	if _, err := s.cron.AddFunc("0 2 * * *", s.rebuildIndex); err != nil {
		return err
	}

	// Upload archive prune: runs daily at 3:00 AM
	if s.archive != nil {
		if _, err := s.cron.AddFunc("0 3 * * *", s.pruneArchive); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// rebuildIndex reindexes all transactions so search stays consistent with
// writes that bypassed the service.
func (s *Scheduler) rebuildIndex() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.logger.Info("starting nightly search index rebuild")
	if err := s.txService.Rebuild(ctx, storage.DemoUserID); err != nil {
		s.logger.Error("search index rebuild failed", slog.Any("error", err))
		return
	}
	s.logger.Info("nightly search index rebuild completed")
}

// pruneArchive drops archived uploads past the retention window.
func (s *Scheduler) pruneArchive() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pruned, err := s.archive.Prune(ctx, s.retention)
	if err != nil {
		s.logger.Error("archive prune failed", slog.Any("error", err))
		return
	}
	s.logger.Info("archive prune completed", slog.Int("pruned", pruned))
}
