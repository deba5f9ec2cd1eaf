// Package wallet is the digital-wallet domain: balance, top-ups, payments and
// the provider-import entry point.
package wallet

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/storage"
	"github.com/bachatbox/bachatbox/pkg/money"
)

// ErrInvalidAmount means a top-up or payment amount was zero or negative.
var ErrInvalidAmount = errors.New("wallet: amount must be positive")

// Service holds the wallet business logic.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// NewService wires the wallet service.
func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// View is the wallet presented to the client, balance formatted as INR.
type View struct {
	ID      int64        `json:"id"`
	Balance *money.Money `json:"balance"`
}

func toView(w storage.Wallet) View {
	return View{ID: w.ID, Balance: money.INRFromDecimal(w.Balance)}
}

// Get returns the user's wallet, creating it on first touch.
func (s *Service) Get(ctx context.Context, userID int64) (View, error) {
	w, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return toView(w), nil
}

// AddMoney credits the wallet and records the top-up.
func (s *Service) AddMoney(ctx context.Context, userID int64, amount decimal.Decimal, description string) (View, error) {
	if !amount.IsPositive() {
		return View{}, ErrInvalidAmount
	}
	w, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if description == "" {
		description = "Added money"
	}
	if _, err := s.store.CreateWalletTransaction(ctx, storage.WalletTransaction{
		WalletID:        w.ID,
		Amount:          amount,
		Description:     description,
		TransactionType: "credit",
		Date:            time.Now(),
	}); err != nil {
		return View{}, err
	}
	updated, err := s.store.AdjustWalletBalance(ctx, w.ID, amount)
	if err != nil {
		return View{}, err
	}
	return toView(updated), nil
}

// Pay debits the wallet. The balance guard lives in the store so a concurrent
// payment cannot overdraw.
func (s *Service) Pay(ctx context.Context, userID int64, amount decimal.Decimal, description, category string) (View, error) {
	if !amount.IsPositive() {
		return View{}, ErrInvalidAmount
	}
	w, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return View{}, err
	}
	updated, err := s.store.AdjustWalletBalance(ctx, w.ID, amount.Neg())
	if err != nil {
		return View{}, err
	}
	if description == "" {
		description = "Wallet payment"
	}
	if _, err := s.store.CreateWalletTransaction(ctx, storage.WalletTransaction{
		WalletID:        w.ID,
		Amount:          amount,
		Description:     description,
		Category:        category,
		TransactionType: "debit",
		Date:            time.Now(),
	}); err != nil {
		return View{}, err
	}
	return toView(updated), nil
}

// Transactions lists the wallet's history.
func (s *Service) Transactions(ctx context.Context, userID int64) ([]storage.WalletTransaction, error) {
	w, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListWalletTransactions(ctx, w.ID)
}
