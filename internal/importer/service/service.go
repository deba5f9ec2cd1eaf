// Package service drives the import pipeline: decode, detect column roles,
// normalize every row, hand the batch to storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bachatbox/bachatbox/internal/importer/decoder"
	"github.com/bachatbox/bachatbox/internal/importer/normalizer"
	"github.com/bachatbox/bachatbox/internal/importer/provider"
	"github.com/bachatbox/bachatbox/internal/importer/roles"
	"github.com/bachatbox/bachatbox/internal/storage"
)

// rowBatchSize bounds the stretch of rows processed between context checks so
// a canceled request stops mid-file instead of running to completion.
const rowBatchSize = 100

// TransactionIndexer receives created transactions for search indexing.
type TransactionIndexer interface {
	IndexTransactions(ctx context.Context, txs []storage.Transaction) error
}

// Service orchestrates file imports against a Store.
type Service struct {
	store   storage.Store
	logger  *slog.Logger
	indexer TransactionIndexer
}

// New wires the import service.
func New(store storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// SetIndexer registers an optional search indexer fed after each import.
func (s *Service) SetIndexer(ix TransactionIndexer) {
	s.indexer = ix
}

// BatchOptions selects how a batch is normalized.
type BatchOptions struct {
	// ProviderHint names a payment app export format; empty means a generic
	// file handled purely by column role detection.
	ProviderHint string
	Destination  normalizer.Destination
	// Now anchors date fallbacks; the zero value means the current time.
	Now time.Time
}

// BatchResult is the outcome of assembling one file.
type BatchResult struct {
	JobID   uuid.UUID
	Records []normalizer.Canonical
	Total   int
	Skipped int
}

// ImportSummary reports an import back to the caller.
type ImportSummary struct {
	JobID    uuid.UUID       `json:"jobId"`
	Total    int             `json:"total"`
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Balance  decimal.Decimal `json:"balance"`
}

func destinationLabel(dest normalizer.Destination) string {
	if dest == normalizer.DestWallet {
		return "wallet"
	}
	return "transactions"
}

// AssembleBatch runs decode, role detection and normalization over the file
// content, preserving row order. A decode failure fails the whole batch; a bad
// row never does, it is counted as skipped.
func (s *Service) AssembleBatch(ctx context.Context, data []byte, kind decoder.Kind, opts BatchOptions) (*BatchResult, error) {
	ctx, span := otel.Tracer("bachatbox.import").Start(ctx, "AssembleBatch")
	defer span.End()

	jobID := uuid.New()
	start := time.Now()
	label := destinationLabel(opts.Destination)
	span.SetAttributes(
		attribute.String("import.job_id", jobID.String()),
		attribute.String("import.destination", label),
		attribute.String("import.provider", opts.ProviderHint),
	)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	table, err := decoder.Decode(data, kind)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("import %s: %w", jobID, err)
	}

	var adapter *provider.Adapter
	if opts.ProviderHint != "" {
		a := provider.Lookup(opts.ProviderHint)
		adapter = &a
	}
	rm := roles.Detect(table.Headers)

	result := &BatchResult{JobID: jobID, Total: len(table.Rows)}
	for i, row := range table.Rows {
		if i%rowBatchSize == 0 {
			if err := ctx.Err(); err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("import %s: %w", jobID, err)
			}
		}
		if record := s.normalizeRow(row, rm, adapter, opts.Destination, now, jobID, i); record != nil {
			result.Records = append(result.Records, *record)
		} else {
			result.Skipped++
		}
	}

	rowsImported.WithLabelValues(label).Add(float64(len(result.Records)))
	rowsSkipped.WithLabelValues(label).Add(float64(result.Skipped))
	importDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	s.logger.InfoContext(ctx, "batch assembled",
		slog.String("job_id", jobID.String()),
		slog.String("destination", label),
		slog.Int("total", result.Total),
		slog.Int("imported", len(result.Records)),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// normalizeRow isolates one row so a panic in normalization cannot take down
// the batch.
func (s *Service) normalizeRow(row decoder.Row, rm roles.RoleMap, adapter *provider.Adapter, dest normalizer.Destination, now time.Time, jobID uuid.UUID, index int) (record *normalizer.Canonical) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("row normalization panicked",
				slog.String("job_id", jobID.String()),
				slog.Int("row", index),
				slog.Any("panic", r),
			)
			record = nil
		}
	}()
	return normalizer.Normalize(row, rm, adapter, dest, now)
}

// ProcessCSVTransactions imports a file onto a user's general ledger.
func (s *Service) ProcessCSVTransactions(ctx context.Context, userID int64, filename string, data []byte) (*ImportSummary, error) {
	kind, err := decoder.KindForFile(filename)
	if err != nil {
		return nil, err
	}

	batch, err := s.AssembleBatch(ctx, data, kind, BatchOptions{Destination: normalizer.DestTransactions})
	if err != nil {
		return nil, err
	}

	txs := make([]storage.Transaction, len(batch.Records))
	for i, r := range batch.Records {
		txs[i] = storage.Transaction{
			UserID:          userID,
			Amount:          r.Amount,
			Description:     r.Description,
			Category:        r.Category,
			TransactionType: r.TransactionType,
			Date:            r.Date,
		}
	}
	created, err := s.store.BulkCreateTransactions(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", batch.JobID, err)
	}
	if s.indexer != nil {
		if err := s.indexer.IndexTransactions(ctx, created); err != nil {
			s.logger.WarnContext(ctx, "imported transactions not indexed",
				slog.String("job_id", batch.JobID.String()),
				slog.Any("error", err),
			)
		}
	}

	return &ImportSummary{
		JobID:    batch.JobID,
		Total:    batch.Total,
		Imported: len(created),
		Skipped:  batch.Skipped,
	}, nil
}

// ImportWalletTransactions imports a provider export into a wallet and moves
// the balance by the net of credits and debits. An overdrawing net keeps the
// records but leaves the balance untouched.
func (s *Service) ImportWalletTransactions(ctx context.Context, walletID int64, providerHint, filename string, data []byte) (*ImportSummary, error) {
	kind, err := decoder.KindForFile(filename)
	if err != nil {
		return nil, err
	}

	batch, err := s.AssembleBatch(ctx, data, kind, BatchOptions{
		ProviderHint: providerHint,
		Destination:  normalizer.DestWallet,
	})
	if err != nil {
		return nil, err
	}

	wtxs := make([]storage.WalletTransaction, len(batch.Records))
	delta := decimal.Zero
	for i, r := range batch.Records {
		wtxs[i] = storage.WalletTransaction{
			WalletID:        walletID,
			Amount:          r.Amount,
			Description:     r.Description,
			Category:        r.Category,
			TransactionType: r.TransactionType,
			Date:            r.Date,
		}
		if r.TransactionType == normalizer.TypeCredit {
			delta = delta.Add(r.Amount)
		} else {
			delta = delta.Sub(r.Amount)
		}
	}
	created, err := s.store.BulkCreateWalletTransactions(ctx, wtxs)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", batch.JobID, err)
	}

	summary := &ImportSummary{
		JobID:    batch.JobID,
		Total:    batch.Total,
		Imported: len(created),
		Skipped:  batch.Skipped,
	}
	wallet, err := s.store.AdjustWalletBalance(ctx, walletID, delta)
	switch {
	case err == nil:
		summary.Balance = wallet.Balance
	case errors.Is(err, storage.ErrInsufficientBalance):
		s.logger.WarnContext(ctx, "import would overdraw wallet, balance left unchanged",
			slog.String("job_id", batch.JobID.String()),
			slog.Int64("wallet_id", walletID),
			slog.String("delta", delta.String()),
		)
	default:
		return nil, fmt.Errorf("import %s: %w", batch.JobID, err)
	}
	return summary, nil
}
