// Package storage defines the persistent records and the Store interface the
// rest of the application is written against. Implementations live in the
// memory and postgres subpackages and are swappable at startup.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DemoUserID is the single user every request runs as while there is no
// authentication layer.
const DemoUserID int64 = 1

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrInsufficientBalance means a wallet debit exceeds the current balance.
	ErrInsufficientBalance = errors.New("storage: insufficient wallet balance")
)

// Transaction is one financial event on a user's ledger.
type Transaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	TransactionType string          `json:"transactionType"`
	Date            time.Time       `json:"date"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Goal is a savings target with a deadline.
type Goal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      time.Time       `json:"deadline"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Wallet is a user's simulated digital wallet.
type Wallet struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

// WalletTransaction is one credit or debit against a wallet.
type WalletTransaction struct {
	ID              int64           `json:"id"`
	WalletID        int64           `json:"walletId"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Category        string          `json:"category,omitempty"`
	TransactionType string          `json:"transactionType"`
	Date            time.Time       `json:"date"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	Type     string
	Category string
}

// Store is the persistence surface. Ids are assigned by the store and returned
// on the created records. Bulk creates are all-or-nothing per call.
type Store interface {
	CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
	BulkCreateTransactions(ctx context.Context, txs []Transaction) ([]Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (Transaction, error)
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error

	CreateGoal(ctx context.Context, goal Goal) (Goal, error)
	GetGoal(ctx context.Context, userID, id int64) (Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]Goal, error)
	UpdateGoal(ctx context.Context, goal Goal) (Goal, error)
	DeleteGoal(ctx context.Context, userID, id int64) error

	GetWallet(ctx context.Context, userID int64) (Wallet, error)
	AdjustWalletBalance(ctx context.Context, walletID int64, delta decimal.Decimal) (Wallet, error)
	CreateWalletTransaction(ctx context.Context, wtx WalletTransaction) (WalletTransaction, error)
	BulkCreateWalletTransactions(ctx context.Context, wtxs []WalletTransaction) ([]WalletTransaction, error)
	ListWalletTransactions(ctx context.Context, walletID int64) ([]WalletTransaction, error)

	Close() error
}
