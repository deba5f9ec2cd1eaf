package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachatbox/bachatbox/internal/storage"
)

var txCols = []string{"id", "user_id", "amount", "description", "category", "transaction_type", "date", "created_at"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return mock, New(mock)
}

func TestCreateTransaction(t *testing.T) {
	mock, s := newMock(t)
	now := time.Now()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("120.45")

	mock.ExpectQuery(`INSERT INTO transactions`).
		WithArgs(int64(1), amount, "Supermarket", "Groceries", "expense", date).
		WillReturnRows(pgxmock.NewRows(txCols).
			AddRow(int64(7), int64(1), amount, "Supermarket", "Groceries", "expense", date, now))

	created, err := s.CreateTransaction(context.Background(), storage.Transaction{
		UserID:          1,
		Amount:          amount,
		Description:     "Supermarket",
		Category:        "Groceries",
		TransactionType: "expense",
		Date:            date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, now, created.CreatedAt)
}

func TestBulkCreateTransactions(t *testing.T) {
	mock, s := newMock(t)
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectBegin()
	for i, desc := range []string{"first", "second"} {
		mock.ExpectQuery(`INSERT INTO transactions`).
			WithArgs(int64(1), decimal.NewFromInt(10), desc, "Others", "expense", date).
			WillReturnRows(pgxmock.NewRows(txCols).
				AddRow(int64(i+1), int64(1), decimal.NewFromInt(10), desc, "Others", "expense", date, now))
	}
	mock.ExpectCommit()

	batch := []storage.Transaction{
		{UserID: 1, Amount: decimal.NewFromInt(10), Description: "first", Category: "Others", TransactionType: "expense", Date: date},
		{UserID: 1, Amount: decimal.NewFromInt(10), Description: "second", Category: "Others", TransactionType: "expense", Date: date},
	}
	created, err := s.BulkCreateTransactions(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(2), created[1].ID)
	assert.Equal(t, "second", created[1].Description)
}

func TestGetTransactionNotFound(t *testing.T) {
	mock, s := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM transactions`).
		WithArgs(int64(9), int64(1)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetTransaction(context.Background(), 1, 9)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	mock, s := newMock(t)

	mock.ExpectExec(`DELETE FROM transactions`).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeleteTransaction(context.Background(), 1, 3))
}

func TestDeleteTransactionMissing(t *testing.T) {
	mock, s := newMock(t)

	mock.ExpectExec(`DELETE FROM transactions`).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, s.DeleteTransaction(context.Background(), 1, 3), storage.ErrNotFound)
}

func TestAdjustWalletBalance(t *testing.T) {
	walletCols := []string{"id", "user_id", "balance", "created_at"}

	t.Run("applied", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`UPDATE wallets`).
			WithArgs(int64(1), decimal.NewFromInt(-200)).
			WillReturnRows(pgxmock.NewRows(walletCols).
				AddRow(int64(1), int64(1), decimal.NewFromInt(300), time.Now()))

		w, err := s.AdjustWalletBalance(context.Background(), 1, decimal.NewFromInt(-200))
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(300)))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`UPDATE wallets`).
			WithArgs(int64(1), decimal.NewFromInt(-1000)).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := s.AdjustWalletBalance(context.Background(), 1, decimal.NewFromInt(-1000))
		assert.ErrorIs(t, err, storage.ErrInsufficientBalance)
	})

	t.Run("missing wallet", func(t *testing.T) {
		mock, s := newMock(t)
		mock.ExpectQuery(`UPDATE wallets`).
			WithArgs(int64(9), decimal.NewFromInt(5)).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(9)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := s.AdjustWalletBalance(context.Background(), 9, decimal.NewFromInt(5))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestListTransactionsFilterArgs(t *testing.T) {
	mock, s := newMock(t)
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM transactions WHERE user_id = \$1 AND transaction_type = \$2 AND category = \$3`).
		WithArgs(int64(1), "expense", "food").
		WillReturnRows(pgxmock.NewRows(txCols).
			AddRow(int64(1), int64(1), decimal.NewFromInt(900), "Restaurant bill", "food", "expense", date, time.Now()))

	out, err := s.ListTransactions(context.Background(), 1, storage.TransactionFilter{Type: "expense", Category: "food"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Restaurant bill", out[0].Description)
}
