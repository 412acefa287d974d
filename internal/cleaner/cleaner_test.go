package cleaner

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnetl/internal/logger"
	"txnetl/internal/records"
)

func user(id any, signup, country any) records.Row {
	return records.Row{
		records.ColUserID:     id,
		records.ColSignupDate: signup,
		records.ColCountry:    country,
	}
}

func transaction(id, userID any, date, amount, typ any) records.Row {
	return records.Row{
		records.ColTransactionID:   id,
		records.ColUserID:          userID,
		records.ColTransactionDate: date,
		records.ColAmount:          amount,
		records.ColTransactionType: typ,
	}
}

// requirePartition asserts the core accounting identity of a run: every input
// row is either accepted or counted under exactly one rejection reason.
func requirePartition(t *testing.T, res Result) {
	t.Helper()
	require.Equal(t, res.Read, len(res.Accepted)+res.TotalDropped(),
		"accepted + dropped must equal read")
}

func TestUsersPipeline(t *testing.T) {
	in := []records.Row{
		// accepted
		user(int64(1), "2024-01-10", "US"),
		// missing_user_id
		user(nil, "2024-01-11", "DE"),
		// invalid_user_id: failed coercion, then not positive
		user("17x", "2024-01-12", "FR"),
		user(int64(-2), "2024-01-12", "FR"),
		// invalid_signup_date: unpadded month/day
		user(int64(3), "2024-1-5", "GB"),
		// missing_country
		user(int64(4), "2024-01-13", nil),
		// duplicate_user_id, both occurrences
		user(int64(5), "2024-01-14", "CA"),
		user(int64(5), "2024-01-15", "CA"),
		// invalid_signup_date
		user(int64(6), "not-a-date", "US"),
		// accepted
		user(int64(7), "2024-01-16", "JP"),
	}

	res := Users(logger.NewNop(), nil).Run(in)

	requirePartition(t, res)
	assert.Equal(t, 10, res.Read)
	assert.Len(t, res.Accepted, 2)
	assert.Equal(t, map[string]int{
		ReasonMissingUserID:     1,
		ReasonInvalidUserID:     2,
		ReasonInvalidSignupDate: 2,
		ReasonMissingCountry:    1,
		ReasonDuplicateUserID:   2,
	}, res.Dropped)

	got1, _ := res.Accepted[0].Int64(records.ColUserID)
	got7, _ := res.Accepted[1].Int64(records.ColUserID)
	assert.Equal(t, int64(1), got1)
	assert.Equal(t, int64(7), got7)
}

func TestTransactionsPipeline(t *testing.T) {
	amt := decimal.NewFromFloat(25.50)
	in := []records.Row{
		// accepted
		transaction(int64(100), int64(1), "2024-02-01", amt, "deposit"),
		// missing_transaction_id
		transaction(nil, int64(1), "2024-02-01", amt, "deposit"),
		// invalid_transaction_id
		transaction("abc", int64(1), "2024-02-01", amt, "deposit"),
		// missing_user_id
		transaction(int64(101), nil, "2024-02-01", amt, "deposit"),
		// invalid_transaction_date
		transaction(int64(102), int64(2), "02/01/2024", amt, "withdrawal"),
		// invalid_amount: zero, then negative
		transaction(int64(103), int64(2), "2024-02-02", decimal.Zero, "purchase"),
		transaction(int64(104), int64(2), "2024-02-02", decimal.NewFromInt(-5), "purchase"),
		// invalid_transaction_type
		transaction(int64(105), int64(3), "2024-02-03", amt, "refund"),
		// duplicate_transaction_id, both occurrences
		transaction(int64(106), int64(3), "2024-02-03", amt, "purchase"),
		transaction(int64(106), int64(3), "2024-02-04", amt, "purchase"),
	}

	res := Transactions(logger.NewNop(), nil).Run(in)

	requirePartition(t, res)
	assert.Len(t, res.Accepted, 1)
	assert.Equal(t, map[string]int{
		ReasonMissingTransactionID: 1,
		ReasonInvalidTransactionID: 1,
		ReasonMissingUserID:        1,
		ReasonInvalidDate:          1,
		ReasonInvalidAmount:        2,
		ReasonInvalidType:          1,
		ReasonDuplicateTransaction: 2,
	}, res.Dropped)
}

func TestRunEmptyBatch(t *testing.T) {
	res := Users(logger.NewNop(), nil).Run(nil)

	assert.Equal(t, 0, res.Read)
	assert.Empty(t, res.Accepted)
	// Every reason is present even with nothing to drop.
	assert.Equal(t, map[string]int{
		ReasonMissingUserID:     0,
		ReasonInvalidUserID:     0,
		ReasonInvalidSignupDate: 0,
		ReasonMissingCountry:    0,
		ReasonDuplicateUserID:   0,
	}, res.Dropped)
}

func TestRunDropsAllDuplicateOccurrences(t *testing.T) {
	// Three rows with the same key: all three go, not just two.
	in := []records.Row{
		user(int64(9), "2024-01-01", "US"),
		user(int64(9), "2024-01-02", "US"),
		user(int64(9), "2024-01-03", "US"),
		user(int64(10), "2024-01-04", "US"),
	}

	res := Users(logger.NewNop(), nil).Run(in)

	requirePartition(t, res)
	assert.Equal(t, 3, res.Dropped[ReasonDuplicateUserID])
	require.Len(t, res.Accepted, 1)
	id, _ := res.Accepted[0].Int64(records.ColUserID)
	assert.Equal(t, int64(10), id)
}

func TestRunNullKeysAreNotDuplicates(t *testing.T) {
	// Two null-key rows must both land under missing_user_id, never under
	// duplicate_user_id.
	in := []records.Row{
		user(nil, "2024-01-01", "US"),
		user(nil, "2024-01-02", "DE"),
	}

	res := Users(logger.NewNop(), nil).Run(in)

	requirePartition(t, res)
	assert.Equal(t, 2, res.Dropped[ReasonMissingUserID])
	assert.Equal(t, 0, res.Dropped[ReasonDuplicateUserID])
}

func TestRunStagesSeeOnlySurvivors(t *testing.T) {
	// A row failing an early stage is invisible to later ones: this row has a
	// missing user_id AND a bad date, but only the first reason counts it.
	in := []records.Row{user(nil, "garbage", nil)}

	res := Users(logger.NewNop(), nil).Run(in)

	requirePartition(t, res)
	assert.Equal(t, 1, res.Dropped[ReasonMissingUserID])
	assert.Equal(t, 0, res.Dropped[ReasonInvalidSignupDate])
	assert.Equal(t, 0, res.Dropped[ReasonMissingCountry])
}

func TestRunIsIdempotent(t *testing.T) {
	in := []records.Row{
		user(int64(1), "2024-01-10", "US"),
		user(nil, "2024-01-11", "DE"),
		user(int64(2), "2024-01-12", "FR"),
	}

	p := Users(logger.NewNop(), nil)
	first := p.Run(in)
	second := p.Run(first.Accepted)

	assert.Equal(t, len(first.Accepted), len(second.Accepted))
	assert.Equal(t, 0, second.TotalDropped())
}

func TestRunRejectSink(t *testing.T) {
	var rejected []RejectedRow
	sink := func(r RejectedRow) { rejected = append(rejected, r) }

	in := []records.Row{
		user(int64(1), "2024-01-10", "US"),
		user(nil, "2024-01-11", "DE"),
		user(int64(5), "2024-01-14", "CA"),
		user(int64(5), "2024-01-15", "CA"),
	}

	res := Users(logger.NewNop(), sink).Run(in)

	require.Len(t, rejected, res.TotalDropped())
	assert.Equal(t, ReasonMissingUserID, rejected[0].Reason)
	assert.Equal(t, ReasonDuplicateUserID, rejected[1].Reason)
	assert.Equal(t, ReasonDuplicateUserID, rejected[2].Reason)
}

func TestRunAcceptedRowsDoNotAliasInput(t *testing.T) {
	in := []records.Row{user(int64(1), "2024-01-10", "US")}

	res := Users(logger.NewNop(), nil).Run(in)

	require.Len(t, res.Accepted, 1)
	res.Accepted[0][records.ColCountry] = "XX"
	assert.Equal(t, "US", in[0][records.ColCountry], "mutating output must not touch input")
}
