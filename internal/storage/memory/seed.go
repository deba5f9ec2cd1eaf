package memory

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/bachatbox/bachatbox/internal/storage"
)

// DemoUserID aliases the storage-level demo user for seed data.
const DemoUserID = storage.DemoUserID

// Seed populates the store with the demo user's data: a handful of fixed
// transactions and wallet entries plus extra faked history so dashboards have
// something to show. Deterministic for the fixed seed value.
func (s *Store) Seed(ctx context.Context) error {
	faker := gofakeit.New(42)
	now := time.Now()

	fixed := []storage.Transaction{
		{UserID: DemoUserID, Amount: decimal.NewFromInt(50000), Description: "Monthly salary", Category: "Income", TransactionType: "income", Date: now.AddDate(0, 0, -25)},
		{UserID: DemoUserID, Amount: decimal.RequireFromString("1200.50"), Description: "Grocery shopping", Category: "food", TransactionType: "expense", Date: now.AddDate(0, 0, -20)},
		{UserID: DemoUserID, Amount: decimal.NewFromInt(15000), Description: "Monthly rent", Category: "rent", TransactionType: "expense", Date: now.AddDate(0, 0, -18)},
		{UserID: DemoUserID, Amount: decimal.NewFromInt(800), Description: "Electricity bill", Category: "utilities", TransactionType: "expense", Date: now.AddDate(0, 0, -10)},
		{UserID: DemoUserID, Amount: decimal.NewFromInt(2500), Description: "Freelance payment", Category: "Income", TransactionType: "income", Date: now.AddDate(0, 0, -5)},
	}
	for i := 0; i < 10; i++ {
		fixed = append(fixed, storage.Transaction{
			UserID:          DemoUserID,
			Amount:          decimal.NewFromFloat(faker.Price(50, 3000)).Round(2),
			Description:     faker.ProductName(),
			Category:        faker.RandomString([]string{"food", "shopping", "transportation", "entertainment", "others"}),
			TransactionType: "expense",
			Date:            now.AddDate(0, 0, -faker.Number(1, 60)),
		})
	}
	if _, err := s.BulkCreateTransactions(ctx, fixed); err != nil {
		return err
	}

	wallet, err := s.GetWallet(ctx, DemoUserID)
	if err != nil {
		return err
	}

	entries := []storage.WalletTransaction{
		{WalletID: wallet.ID, Amount: decimal.NewFromInt(5000), Description: "Added money via UPI", TransactionType: "credit", Date: now.AddDate(0, 0, -15)},
		{WalletID: wallet.ID, Amount: decimal.NewFromInt(350), Description: "Cab ride", Category: "transportation", TransactionType: "debit", Date: now.AddDate(0, 0, -12)},
		{WalletID: wallet.ID, Amount: decimal.NewFromInt(900), Description: "Restaurant bill", Category: "food", TransactionType: "debit", Date: now.AddDate(0, 0, -8)},
		{WalletID: wallet.ID, Amount: decimal.NewFromInt(2000), Description: "Added money via card", TransactionType: "credit", Date: now.AddDate(0, 0, -4)},
		{WalletID: wallet.ID, Amount: decimal.NewFromInt(480), Description: "Movie tickets", Category: "entertainment", TransactionType: "debit", Date: now.AddDate(0, 0, -2)},
	}
	if _, err := s.BulkCreateWalletTransactions(ctx, entries); err != nil {
		return err
	}

	balance := decimal.Zero
	for _, e := range entries {
		if e.TransactionType == "credit" {
			balance = balance.Add(e.Amount)
		} else {
			balance = balance.Sub(e.Amount)
		}
	}
	if _, err := s.AdjustWalletBalance(ctx, wallet.ID, balance); err != nil {
		return err
	}

	goal := storage.Goal{
		UserID:        DemoUserID,
		Name:          "Emergency fund",
		TargetAmount:  decimal.NewFromInt(100000),
		CurrentAmount: decimal.NewFromInt(35000),
		Deadline:      now.AddDate(1, 0, 0),
	}
	if _, err := s.CreateGoal(ctx, goal); err != nil {
		return err
	}
	return nil
}
