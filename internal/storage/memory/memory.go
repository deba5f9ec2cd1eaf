// Package memory is the in-memory Store used for development and tests. State
// lives in mutex-guarded maps and disappears with the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/storage"
)

// Store implements storage.Store over process memory.
type Store struct {
	mu sync.RWMutex

	nextTransactionID       int64
	nextGoalID              int64
	nextWalletID            int64
	nextWalletTransactionID int64

	transactions       map[int64]storage.Transaction
	goals              map[int64]storage.Goal
	wallets            map[int64]storage.Wallet
	walletTransactions map[int64]storage.WalletTransaction
}

// New returns an empty store.
func New() *Store {
	return &Store{
		transactions:       make(map[int64]storage.Transaction),
		goals:              make(map[int64]storage.Goal),
		wallets:            make(map[int64]storage.Wallet),
		walletTransactions: make(map[int64]storage.WalletTransaction),
	}
}

func (s *Store) CreateTransaction(_ context.Context, tx storage.Transaction) (storage.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTransactionLocked(tx), nil
}

func (s *Store) createTransactionLocked(tx storage.Transaction) storage.Transaction {
	s.nextTransactionID++
	tx.ID = s.nextTransactionID
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	s.transactions[tx.ID] = tx
	return tx
}

func (s *Store) BulkCreateTransactions(_ context.Context, txs []storage.Transaction) ([]storage.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := make([]storage.Transaction, 0, len(txs))
	for _, tx := range txs {
		created = append(created, s.createTransactionLocked(tx))
	}
	return created, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (storage.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return storage.Transaction{}, fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64, filter storage.TransactionFilter) ([]storage.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Type != "" && tx.TransactionType != filter.Type {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx storage.Transaction) (storage.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.transactions[tx.ID]
	if !ok || current.UserID != tx.UserID {
		return storage.Transaction{}, fmt.Errorf("transaction %d: %w", tx.ID, storage.ErrNotFound)
	}
	tx.CreatedAt = current.CreatedAt
	s.transactions[tx.ID] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return fmt.Errorf("transaction %d: %w", id, storage.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) CreateGoal(_ context.Context, goal storage.Goal) (storage.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGoalID++
	goal.ID = s.nextGoalID
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	s.goals[goal.ID] = goal
	return goal, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id int64) (storage.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goal, ok := s.goals[id]
	if !ok || goal.UserID != userID {
		return storage.Goal{}, fmt.Errorf("goal %d: %w", id, storage.ErrNotFound)
	}
	return goal, nil
}

func (s *Store) ListGoals(_ context.Context, userID int64) ([]storage.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.Goal
	for _, goal := range s.goals {
		if goal.UserID == userID {
			out = append(out, goal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, goal storage.Goal) (storage.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.goals[goal.ID]
	if !ok || current.UserID != goal.UserID {
		return storage.Goal{}, fmt.Errorf("goal %d: %w", goal.ID, storage.ErrNotFound)
	}
	goal.CreatedAt = current.CreatedAt
	s.goals[goal.ID] = goal
	return goal, nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal, ok := s.goals[id]
	if !ok || goal.UserID != userID {
		return fmt.Errorf("goal %d: %w", id, storage.ErrNotFound)
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) GetWallet(_ context.Context, userID int64) (storage.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.UserID == userID {
			return w, nil
		}
	}
	// A user gets a wallet on first touch, mirroring signup behavior.
	s.nextWalletID++
	w := storage.Wallet{
		ID:        s.nextWalletID,
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
	}
	s.wallets[w.ID] = w
	return w, nil
}

func (s *Store) AdjustWalletBalance(_ context.Context, walletID int64, delta decimal.Decimal) (storage.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return storage.Wallet{}, fmt.Errorf("wallet %d: %w", walletID, storage.ErrNotFound)
	}
	next := w.Balance.Add(delta)
	if next.IsNegative() {
		return storage.Wallet{}, storage.ErrInsufficientBalance
	}
	w.Balance = next
	s.wallets[walletID] = w
	return w, nil
}

func (s *Store) CreateWalletTransaction(_ context.Context, wtx storage.WalletTransaction) (storage.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createWalletTransactionLocked(wtx), nil
}

func (s *Store) createWalletTransactionLocked(wtx storage.WalletTransaction) storage.WalletTransaction {
	s.nextWalletTransactionID++
	wtx.ID = s.nextWalletTransactionID
	if wtx.CreatedAt.IsZero() {
		wtx.CreatedAt = time.Now()
	}
	s.walletTransactions[wtx.ID] = wtx
	return wtx
}

func (s *Store) BulkCreateWalletTransactions(_ context.Context, wtxs []storage.WalletTransaction) ([]storage.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := make([]storage.WalletTransaction, 0, len(wtxs))
	for _, wtx := range wtxs {
		created = append(created, s.createWalletTransactionLocked(wtx))
	}
	return created, nil
}

func (s *Store) ListWalletTransactions(_ context.Context, walletID int64) ([]storage.WalletTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.WalletTransaction
	for _, wtx := range s.walletTransactions {
		if wtx.WalletID == walletID {
			out = append(out, wtx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Close() error { return nil }
