package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bachatbox/bachatbox/internal/importer/decoder"
	"github.com/bachatbox/bachatbox/internal/importer/normalizer"
	"github.com/bachatbox/bachatbox/internal/storage"
	"github.com/bachatbox/bachatbox/internal/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store, slog.New(slog.DiscardHandler)), store
}

func TestAssembleBatchScenario(t *testing.T) {
	svc, _ := newService(t)
	data := []byte("Date,Category,Description,Amount,Type\n" +
		"2024-03-15,Groceries,Supermarket,120.45,expense\n" +
		"2024-03-01,Income,Salary,50000,income\n" +
		",,,,\n")

	batch, err := svc.AssembleBatch(context.Background(), data, decoder.KindCSV, BatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 1, batch.Skipped)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "Supermarket", batch.Records[0].Description)
	assert.Equal(t, normalizer.TypeIncome, batch.Records[1].TransactionType)
	assert.NotEqual(t, batch.JobID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestAssembleBatchDecodeFailure(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.AssembleBatch(context.Background(), []byte("not a zip"), decoder.KindXLSX, BatchOptions{})
	require.ErrorIs(t, err, decoder.ErrDecode)
}

func TestAssembleBatchCanceledContext(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := []byte("Date,Amount\n2024-03-15,10\n")
	_, err := svc.AssembleBatch(ctx, data, decoder.KindCSV, BatchOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessCSVTransactions(t *testing.T) {
	svc, store := newService(t)
	data := []byte("Date,Category,Description,Amount,Type\n" +
		"2024-03-15,Groceries,Supermarket,120.45,expense\n" +
		"2024-03-01,Income,Salary,50000,income\n")

	summary, err := svc.ProcessCSVTransactions(context.Background(), 1, "statement.csv", data)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)

	stored, err := store.ListTransactions(context.Background(), 1, storage.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Supermarket", stored[0].Description)
	assert.Equal(t, "income", stored[1].TransactionType)
}

func TestProcessCSVTransactionsRejectsExtension(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ProcessCSVTransactions(context.Background(), 1, "statement.pdf", nil)
	require.ErrorIs(t, err, decoder.ErrUnsupportedFile)
}

func TestImportWalletTransactions(t *testing.T) {
	svc, store := newService(t)
	wallet, err := store.GetWallet(context.Background(), 1)
	require.NoError(t, err)

	data := []byte("Date,Description,Amount,Type\n" +
		"2024-03-10,Added money,2000,credit\n" +
		"2024-03-12,Restaurant bill,900,debit\n" +
		"2024-03-14,Cab ride,350,debit\n")

	summary, err := svc.ImportWalletTransactions(context.Background(), wallet.ID, "paytm", "export.csv", data)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(750)), "balance is credits minus debits, got %s", summary.Balance)

	wtxs, err := store.ListWalletTransactions(context.Background(), wallet.ID)
	require.NoError(t, err)
	require.Len(t, wtxs, 3)
	assert.Equal(t, "credit", wtxs[0].TransactionType)
	assert.Equal(t, "food", wtxs[1].Category)
	assert.Equal(t, "transportation", wtxs[2].Category)
}

func TestImportWalletOverdrawKeepsRecords(t *testing.T) {
	svc, store := newService(t)
	wallet, err := store.GetWallet(context.Background(), 1)
	require.NoError(t, err)

	data := []byte("Date,Description,Amount,Type\n2024-03-12,Big purchase,5000,debit\n")

	summary, err := svc.ImportWalletTransactions(context.Background(), wallet.ID, "", "export.csv", data)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.True(t, summary.Balance.IsZero())

	wtxs, err := store.ListWalletTransactions(context.Background(), wallet.ID)
	require.NoError(t, err)
	assert.Len(t, wtxs, 1)

	w, err := store.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero(), "overdrawing import leaves the balance alone")
}

func TestImportWalletProviderFallbackDate(t *testing.T) {
	svc, store := newService(t)
	wallet, err := store.GetWallet(context.Background(), 1)
	require.NoError(t, err)

	// PhonePe exports name transaction_date, but a file carrying only a
	// generic date column still imports.
	data := []byte("Date,Description,Amount\n2024-05-20,Mobile recharge,99\n")

	summary, err := svc.ImportWalletTransactions(context.Background(), wallet.ID, "phonepe", "export.csv", data)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)

	wtxs, err := store.ListWalletTransactions(context.Background(), wallet.ID)
	require.NoError(t, err)
	require.Len(t, wtxs, 1)
	assert.Equal(t, 2024, wtxs[0].Date.Year())
	assert.Equal(t, "Mobile recharge", wtxs[0].Description)
}
