// Package postgres is the pgx-backed Store used when a database DSN is
// configured. Schema lives in embedded goose migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/storage"
)

// DB is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store implements storage.Store against PostgreSQL.
type Store struct {
	db DB
}

// New returns a store over an open pool.
func New(db DB) *Store {
	return &Store{db: db}
}

// Connect opens a pool for the DSN, runs pending migrations and returns the
// ready store.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

const transactionColumns = `id, user_id, amount, description, category, transaction_type, date, created_at`

func scanTransaction(row pgx.Row) (storage.Transaction, error) {
	var tx storage.Transaction
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Description, &tx.Category, &tx.TransactionType, &tx.Date, &tx.CreatedAt)
	return tx, err
}

func (s *Store) CreateTransaction(ctx context.Context, tx storage.Transaction) (storage.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, amount, description, category, transaction_type, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + transactionColumns

	created, err := scanTransaction(s.db.QueryRow(ctx, query,
		tx.UserID, tx.Amount, tx.Description, tx.Category, tx.TransactionType, tx.Date))
	if err != nil {
		return storage.Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}
	return created, nil
}

func (s *Store) BulkCreateTransactions(ctx context.Context, txs []storage.Transaction) ([]storage.Transaction, error) {
	dbtx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	query := `
		INSERT INTO transactions (user_id, amount, description, category, transaction_type, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + transactionColumns

	created := make([]storage.Transaction, 0, len(txs))
	for _, tx := range txs {
		row, err := scanTransaction(dbtx.QueryRow(ctx, query,
			tx.UserID, tx.Amount, tx.Description, tx.Category, tx.TransactionType, tx.Date))
		if err != nil {
			return nil, fmt.Errorf("failed to insert transaction batch: %w", err)
		}
		created = append(created, row)
	}
	if err := dbtx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction batch: %w", err)
	}
	return created, nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id int64) (storage.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	tx, err := scanTransaction(s.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Transaction{}, fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]storage.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND transaction_type = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []storage.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTransaction(ctx context.Context, tx storage.Transaction) (storage.Transaction, error) {
	query := `
		UPDATE transactions
		SET amount = $3, description = $4, category = $5, transaction_type = $6, date = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + transactionColumns

	updated, err := scanTransaction(s.db.QueryRow(ctx, query,
		tx.ID, tx.UserID, tx.Amount, tx.Description, tx.Category, tx.TransactionType, tx.Date))
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}
	return updated, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, created_at`

func scanGoal(row pgx.Row) (storage.Goal, error) {
	var g storage.Goal
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &g.CreatedAt)
	return g, err
}

func (s *Store) CreateGoal(ctx context.Context, goal storage.Goal) (storage.Goal, error) {
	query := `
		INSERT INTO goals (user_id, name, target_amount, current_amount, deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + goalColumns

	created, err := scanGoal(s.db.QueryRow(ctx, query,
		goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Deadline))
	if err != nil {
		return storage.Goal{}, fmt.Errorf("failed to create goal: %w", err)
	}
	return created, nil
}

func (s *Store) GetGoal(ctx context.Context, userID, id int64) (storage.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`
	goal, err := scanGoal(s.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Goal{}, fmt.Errorf("goal %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Goal{}, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

func (s *Store) ListGoals(ctx context.Context, userID int64) ([]storage.Goal, error) {
	rows, err := s.db.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var out []storage.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		out = append(out, goal)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGoal(ctx context.Context, goal storage.Goal) (storage.Goal, error) {
	query := `
		UPDATE goals
		SET name = $3, target_amount = $4, current_amount = $5, deadline = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + goalColumns

	updated, err := scanGoal(s.db.QueryRow(ctx, query,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Deadline))
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Goal{}, fmt.Errorf("goal %d: %w", goal.ID, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Goal{}, fmt.Errorf("failed to update goal: %w", err)
	}
	return updated, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("goal %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

const walletColumns = `id, user_id, balance, created_at`

func scanWallet(row pgx.Row) (storage.Wallet, error) {
	var w storage.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt)
	return w, err
}

func (s *Store) GetWallet(ctx context.Context, userID int64) (storage.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + walletColumns

	w, err := scanWallet(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		return storage.Wallet{}, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

func (s *Store) AdjustWalletBalance(ctx context.Context, walletID int64, delta decimal.Decimal) (storage.Wallet, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING ` + walletColumns

	w, err := scanWallet(s.db.QueryRow(ctx, query, walletID, delta))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the wallet is missing or the guard rejected the debit.
		exists := false
		if checkErr := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)`, walletID).Scan(&exists); checkErr != nil {
			return storage.Wallet{}, fmt.Errorf("failed to adjust wallet balance: %w", checkErr)
		}
		if !exists {
			return storage.Wallet{}, fmt.Errorf("wallet %d: %w", walletID, storage.ErrNotFound)
		}
		return storage.Wallet{}, storage.ErrInsufficientBalance
	}
	if err != nil {
		return storage.Wallet{}, fmt.Errorf("failed to adjust wallet balance: %w", err)
	}
	return w, nil
}

const walletTransactionColumns = `id, wallet_id, amount, description, category, transaction_type, date, created_at`

func scanWalletTransaction(row pgx.Row) (storage.WalletTransaction, error) {
	var wtx storage.WalletTransaction
	err := row.Scan(&wtx.ID, &wtx.WalletID, &wtx.Amount, &wtx.Description, &wtx.Category, &wtx.TransactionType, &wtx.Date, &wtx.CreatedAt)
	return wtx, err
}

func (s *Store) CreateWalletTransaction(ctx context.Context, wtx storage.WalletTransaction) (storage.WalletTransaction, error) {
	query := `
		INSERT INTO wallet_transactions (wallet_id, amount, description, category, transaction_type, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + walletTransactionColumns

	created, err := scanWalletTransaction(s.db.QueryRow(ctx, query,
		wtx.WalletID, wtx.Amount, wtx.Description, wtx.Category, wtx.TransactionType, wtx.Date))
	if err != nil {
		return storage.WalletTransaction{}, fmt.Errorf("failed to create wallet transaction: %w", err)
	}
	return created, nil
}

func (s *Store) BulkCreateWalletTransactions(ctx context.Context, wtxs []storage.WalletTransaction) ([]storage.WalletTransaction, error) {
	dbtx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback(ctx)

	query := `
		INSERT INTO wallet_transactions (wallet_id, amount, description, category, transaction_type, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + walletTransactionColumns

	created := make([]storage.WalletTransaction, 0, len(wtxs))
	for _, wtx := range wtxs {
		row, err := scanWalletTransaction(dbtx.QueryRow(ctx, query,
			wtx.WalletID, wtx.Amount, wtx.Description, wtx.Category, wtx.TransactionType, wtx.Date))
		if err != nil {
			return nil, fmt.Errorf("failed to insert wallet transaction batch: %w", err)
		}
		created = append(created, row)
	}
	if err := dbtx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit wallet transaction batch: %w", err)
	}
	return created, nil
}

func (s *Store) ListWalletTransactions(ctx context.Context, walletID int64) ([]storage.WalletTransaction, error) {
	rows, err := s.db.Query(ctx, `SELECT `+walletTransactionColumns+` FROM wallet_transactions WHERE wallet_id = $1 ORDER BY id`, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	var out []storage.WalletTransaction
	for rows.Next() {
		wtx, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		out = append(out, wtx)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}
