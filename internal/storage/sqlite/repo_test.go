package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnetl/internal/records"
	"txnetl/internal/storage"
)

func newRepo(tb testing.TB) *Repository {
	tb.Helper()
	r, err := Open(context.Background(), filepath.Join(tb.TempDir(), "test.db"))
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(r.Close)
	if err := r.EnsureSchema(context.Background()); err != nil {
		tb.Fatalf("ensure schema: %v", err)
	}
	return r
}

func userRow(id int64, signup, country string) records.Row {
	return records.Row{
		records.ColUserID:     id,
		records.ColSignupDate: signup,
		records.ColCountry:    country,
	}
}

func txRow(id, userID int64, date string, amount float64, typ string) records.Row {
	return records.Row{
		records.ColTransactionID:   id,
		records.ColUserID:          userID,
		records.ColTransactionDate: date,
		records.ColAmount:          decimal.NewFromFloat(amount),
		records.ColTransactionType: typ,
	}
}

func TestOpenEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, r.EnsureSchema(context.Background()))
	require.NoError(t, r.EnsureSchema(context.Background()))
}

func TestUpsertIgnoreUsersKeepsFirst(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	n, err := r.UpsertIgnoreUsers(ctx, []records.Row{userRow(1, "2024-01-10", "US")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Same key again: the stored row wins, nothing written.
	n, err = r.UpsertIgnoreUsers(ctx, []records.Row{userRow(1, "2099-12-31", "XX")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = r.UpsertReplaceTransactions(ctx, []records.Row{txRow(100, 1, "2024-02-01", 10, "deposit")})
	require.NoError(t, err)

	s, err := r.UserTransactionSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "US", s.Country)
}

func TestUpsertReplaceTransactionsOverwrites(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.UpsertIgnoreUsers(ctx, []records.Row{userRow(1, "2024-01-10", "US")})
	require.NoError(t, err)

	_, err = r.UpsertReplaceTransactions(ctx, []records.Row{txRow(100, 1, "2024-02-01", 10, "deposit")})
	require.NoError(t, err)
	_, err = r.UpsertReplaceTransactions(ctx, []records.Row{txRow(100, 1, "2024-02-01", 99, "deposit")})
	require.NoError(t, err)

	s, err := r.UserTransactionSummary(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 99.0, s.TotalAmount, 1e-9)
}

func TestUpsertEmptyBatch(t *testing.T) {
	r := newRepo(t)

	n, err := r.UpsertIgnoreUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUserTransactionSummary(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.UpsertIgnoreUsers(ctx, []records.Row{
		userRow(1, "2024-01-10", "US"),
		userRow(2, "2024-01-11", "DE"),
	})
	require.NoError(t, err)

	_, err = r.UpsertReplaceTransactions(ctx, []records.Row{
		txRow(100, 1, "2024-02-01", 100, "deposit"),
		txRow(101, 1, "2024-02-02", 40, "withdrawal"),
		txRow(102, 1, "2024-02-03", 25.5, "purchase"),
		txRow(103, 2, "2024-02-03", 7, "deposit"),
	})
	require.NoError(t, err)

	s, err := r.UserTransactionSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.UserID)
	assert.Equal(t, "US", s.Country)
	assert.InDelta(t, 165.5, s.TotalAmount, 1e-9)
	assert.InDelta(t, 100, s.TotalDeposit, 1e-9)
	assert.InDelta(t, 40, s.TotalWithdrawal, 1e-9)
	assert.InDelta(t, 25.5, s.TotalPurchase, 1e-9)

	// User 2 exists but user 3 does not: only the latter is ErrNotFound.
	_, err = r.UserTransactionSummary(ctx, 2)
	require.NoError(t, err)
	_, err = r.UserTransactionSummary(ctx, 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUserSummaryWithoutTransactions(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.UpsertIgnoreUsers(ctx, []records.Row{userRow(5, "2024-01-10", "US")})
	require.NoError(t, err)

	// A user with no transactions falls out of the inner join.
	_, err = r.UserTransactionSummary(ctx, 5)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTopUsersByVolume(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.UpsertIgnoreUsers(ctx, []records.Row{
		userRow(1, "2024-01-10", "US"),
		userRow(2, "2024-01-11", "DE"),
		userRow(3, "2024-01-12", "FR"),
	})
	require.NoError(t, err)

	_, err = r.UpsertReplaceTransactions(ctx, []records.Row{
		txRow(100, 1, "2024-02-01", 10, "deposit"),
		txRow(101, 2, "2024-02-01", 10, "deposit"),
		txRow(102, 2, "2024-02-02", 10, "deposit"),
		txRow(103, 2, "2024-02-03", 10, "deposit"),
		txRow(104, 3, "2024-02-01", 10, "deposit"),
		txRow(105, 3, "2024-02-02", 10, "deposit"),
	})
	require.NoError(t, err)

	top, err := r.TopUsersByVolume(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, int64(3), top[0].TransactionCount)
	assert.Equal(t, int64(3), top[1].UserID)
	assert.Equal(t, int64(2), top[1].TransactionCount)
}

func TestDailyTotals(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.UpsertIgnoreUsers(ctx, []records.Row{userRow(1, "2024-01-10", "US")})
	require.NoError(t, err)

	_, err = r.UpsertReplaceTransactions(ctx, []records.Row{
		txRow(100, 1, "2024-02-01", 10, "deposit"),
		txRow(101, 1, "2024-02-01", 15, "deposit"),
		txRow(102, 1, "2024-02-01", 5, "purchase"),
		txRow(103, 1, "2024-02-02", 20, "deposit"),
	})
	require.NoError(t, err)

	totals, err := r.DailyTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.Equal(t, "2024-02-01", totals[0].TransactionDate)
	assert.Equal(t, "deposit", totals[0].TransactionType)
	assert.InDelta(t, 25, totals[0].DailyTotal, 1e-9)
	assert.Equal(t, "purchase", totals[1].TransactionType)
	assert.Equal(t, "2024-02-02", totals[2].TransactionDate)
}

func TestDropTables(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()

	_, err := r.UpsertIgnoreUsers(ctx, []records.Row{userRow(1, "2024-01-10", "US")})
	require.NoError(t, err)

	require.NoError(t, r.DropTables(ctx))
	require.NoError(t, r.EnsureSchema(ctx))

	_, err = r.UserTransactionSummary(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFactoryRegistration(t *testing.T) {
	s, err := storage.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "f.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EnsureSchema(context.Background()))
}
