package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachatbox/bachatbox/internal/storage"
)

func TestTransactionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateTransaction(ctx, storage.Transaction{
		UserID:          1,
		Amount:          decimal.RequireFromString("120.45"),
		Description:     "Supermarket",
		Category:        "Groceries",
		TransactionType: "expense",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetTransaction(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Supermarket", got.Description)

	got.Description = "Weekly groceries"
	updated, err := s.UpdateTransaction(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Weekly groceries", updated.Description)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	require.NoError(t, s.DeleteTransaction(ctx, 1, created.ID))
	_, err = s.GetTransaction(ctx, 1, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransactionUserIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateTransaction(ctx, storage.Transaction{UserID: 1, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = s.GetTransaction(ctx, 2, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, 2, created.ID), storage.ErrNotFound)
}

func TestBulkCreatePreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	batch := []storage.Transaction{
		{UserID: 1, Description: "first"},
		{UserID: 1, Description: "second"},
		{UserID: 1, Description: "third"},
	}
	created, err := s.BulkCreateTransactions(ctx, batch)
	require.NoError(t, err)
	require.Len(t, created, 3)
	for i, tx := range created {
		assert.Equal(t, int64(i+1), tx.ID)
		assert.Equal(t, batch[i].Description, tx.Description)
	}
}

func TestListTransactionsFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.BulkCreateTransactions(ctx, []storage.Transaction{
		{UserID: 1, TransactionType: "income", Category: "Income"},
		{UserID: 1, TransactionType: "expense", Category: "food"},
		{UserID: 1, TransactionType: "expense", Category: "rent"},
		{UserID: 2, TransactionType: "expense", Category: "food"},
	})
	require.NoError(t, err)

	all, err := s.ListTransactions(ctx, 1, storage.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	expenses, err := s.ListTransactions(ctx, 1, storage.TransactionFilter{Type: "expense"})
	require.NoError(t, err)
	assert.Len(t, expenses, 2)

	food, err := s.ListTransactions(ctx, 1, storage.TransactionFilter{Type: "expense", Category: "food"})
	require.NoError(t, err)
	require.Len(t, food, 1)
	assert.Equal(t, "food", food[0].Category)
}

func TestWalletBalance(t *testing.T) {
	ctx := context.Background()
	s := New()

	w, err := s.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())

	again, err := s.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, w.ID, again.ID, "wallet is created once per user")

	w, err = s.AdjustWalletBalance(ctx, w.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(500)))

	w, err = s.AdjustWalletBalance(ctx, w.ID, decimal.NewFromInt(-200))
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(300)))

	_, err = s.AdjustWalletBalance(ctx, w.ID, decimal.NewFromInt(-1000))
	assert.ErrorIs(t, err, storage.ErrInsufficientBalance)

	_, err = s.AdjustWalletBalance(ctx, 999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGoalCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	goal, err := s.CreateGoal(ctx, storage.Goal{
		UserID:       1,
		Name:         "Vacation",
		TargetAmount: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	goal.CurrentAmount = decimal.NewFromInt(10000)
	updated, err := s.UpdateGoal(ctx, goal)
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(10000)))

	goals, err := s.ListGoals(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, goals, 1)

	require.NoError(t, s.DeleteGoal(ctx, 1, goal.ID))
	_, err = s.GetGoal(ctx, 1, goal.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Seed(ctx))

	txs, err := s.ListTransactions(ctx, DemoUserID, storage.TransactionFilter{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(txs), 5)

	w, err := s.GetWallet(ctx, DemoUserID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(5270)), "seeded balance is credits minus debits")

	wtxs, err := s.ListWalletTransactions(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, wtxs, 5)
}
