// Package transactions is the general-ledger domain: CRUD, description
// search and CSV export over a user's transactions.
package transactions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/storage"
)

// Service holds the transactions business logic.
type Service struct {
	store  storage.Store
	index  *Index
	logger *slog.Logger
}

// NewService wires the transactions service.
func NewService(store storage.Store, index *Index, logger *slog.Logger) *Service {
	return &Service{store: store, index: index, logger: logger}
}

// Rebuild reindexes every stored transaction, called once at startup so
// search covers pre-existing data.
func (s *Service) Rebuild(ctx context.Context, userID int64) error {
	txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}
	return s.index.IndexTransactions(ctx, txs)
}

// Create stores a transaction and indexes it.
func (s *Service) Create(ctx context.Context, tx storage.Transaction) (storage.Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	tx.Amount = tx.Amount.Abs()
	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return storage.Transaction{}, err
	}
	if err := s.index.IndexTransactions(ctx, []storage.Transaction{created}); err != nil {
		s.logger.Warn("transaction stored but not indexed", slog.Int64("id", created.ID), slog.Any("error", err))
	}
	return created, nil
}

// Get returns one transaction.
func (s *Service) Get(ctx context.Context, userID, id int64) (storage.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// List returns the user's transactions, optionally filtered.
func (s *Service) List(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]storage.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, filter)
}

// Update replaces a transaction's mutable fields and refreshes its document.
func (s *Service) Update(ctx context.Context, tx storage.Transaction) (storage.Transaction, error) {
	tx.Amount = tx.Amount.Abs()
	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return storage.Transaction{}, err
	}
	if err := s.index.IndexTransactions(ctx, []storage.Transaction{updated}); err != nil {
		s.logger.Warn("transaction updated but not reindexed", slog.Int64("id", updated.ID), slog.Any("error", err))
	}
	return updated, nil
}

// Delete removes a transaction and its document.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	if err := s.index.Remove(id); err != nil {
		s.logger.Warn("transaction deleted but document kept", slog.Int64("id", id), slog.Any("error", err))
	}
	return nil
}

// Search resolves a free-text query against the index and loads the matching
// transactions, preserving relevance order.
func (s *Service) Search(ctx context.Context, userID int64, query string, limit int) ([]storage.Transaction, error) {
	ids, err := s.index.Search(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]storage.Transaction, 0, len(ids))
	for _, id := range ids {
		tx, err := s.store.GetTransaction(ctx, userID, id)
		if err != nil {
			// Stale index entry or another user's record.
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// exportRow is the CSV projection of a transaction, matching the documented
// import shape so an export round-trips through the importer.
type exportRow struct {
	Date        string `csv:"Date"`
	Category    string `csv:"Category"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Type        string `csv:"Type"`
}

// ExportCSV renders the user's transactions as CSV.
func (s *Service) ExportCSV(ctx context.Context, userID int64) (string, error) {
	txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return "", err
	}
	rows := make([]exportRow, len(txs))
	for i, tx := range txs {
		rows[i] = exportRow{
			Date:        tx.Date.Format("2006-01-02"),
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Type:        tx.TransactionType,
		}
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to render csv: %w", err)
	}
	return out, nil
}

// MonthlySummary aggregates a month's income and expenses.
type MonthlySummary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// Summary totals the user's transactions for the month containing at.
func (s *Service) Summary(ctx context.Context, userID int64, at time.Time) (MonthlySummary, error) {
	txs, err := s.store.ListTransactions(ctx, userID, storage.TransactionFilter{})
	if err != nil {
		return MonthlySummary{}, err
	}
	summary := MonthlySummary{Income: decimal.Zero, Expenses: decimal.Zero, Savings: decimal.Zero}
	for _, tx := range txs {
		if tx.Date.Year() != at.Year() || tx.Date.Month() != at.Month() {
			continue
		}
		if tx.TransactionType == "income" {
			summary.Income = summary.Income.Add(tx.Amount)
		} else {
			summary.Expenses = summary.Expenses.Add(tx.Amount)
		}
	}
	summary.Savings = summary.Income.Sub(summary.Expenses)
	return summary, nil
}
