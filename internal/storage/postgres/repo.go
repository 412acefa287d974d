// Package postgres implements a Postgres-backed storage.Store using pgx v5.
// Batch upserts are sent through a pgx.Batch in a single transaction, with
// ON CONFLICT clauses expressing the insert-or-ignore / insert-or-replace
// semantics that SQLite spells OR IGNORE / OR REPLACE.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"txnetl/internal/records"
	"txnetl/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, dsn string) (storage.Store, error) {
		return Open(ctx, dsn)
	})
}

// Repository is the Postgres storage.Store.
type Repository struct {
	pool *pgxpool.Pool
}

// Open connects a pgx pool and pings it so an invalid DSN fails at startup,
// not at first write.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Close closes the pool.
func (r *Repository) Close() { r.pool.Close() }

// EnsureSchema creates both tables if absent. No foreign key is declared:
// the sqlite backend's FK is unenforced there, and declaring an enforced one
// here would make orphaned transactions load differently per backend.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const usersDDL = `
		CREATE TABLE IF NOT EXISTS users (
			user_id     BIGINT PRIMARY KEY,
			signup_date TEXT,
			country     TEXT
		)`
	const transactionsDDL = `
		CREATE TABLE IF NOT EXISTS transactions (
			transaction_id   BIGINT PRIMARY KEY,
			user_id          BIGINT,
			transaction_date TEXT,
			amount           NUMERIC,
			transaction_type TEXT
		)`

	for _, ddl := range []string{usersDDL, transactionsDDL} {
		if _, err := r.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("postgres: create table: %w", err)
		}
	}
	return nil
}

// DropTables removes both tables if present.
func (r *Repository) DropTables(ctx context.Context) error {
	for _, table := range []string{"transactions", "users"} {
		if _, err := r.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("postgres: drop %s: %w", table, err)
		}
	}
	return nil
}

// UpsertIgnoreUsers writes the accepted users batch; conflicting primary
// keys keep their stored row (DO NOTHING).
func (r *Repository) UpsertIgnoreUsers(ctx context.Context, rows []records.Row) (int64, error) {
	fields := records.UserFields()
	sql := insertSQL("users", records.Names(fields), "ON CONFLICT (user_id) DO NOTHING")
	return r.sendBatch(ctx, sql, fields, rows)
}

// UpsertReplaceTransactions writes the accepted transactions batch;
// conflicting primary keys are overwritten (DO UPDATE).
func (r *Repository) UpsertReplaceTransactions(ctx context.Context, rows []records.Row) (int64, error) {
	fields := records.TransactionFields()
	cols := records.Names(fields)

	var updates []string
	for _, c := range cols[1:] { // every column except the key
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	conflict := "ON CONFLICT (transaction_id) DO UPDATE SET " + strings.Join(updates, ", ")
	return r.sendBatch(ctx, insertSQL("transactions", cols, conflict), fields, rows)
}

// insertSQL builds "INSERT INTO t (a, b) VALUES ($1, $2) <conflict>".
func insertSQL(table string, cols []string, conflict string) string {
	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), conflict)
}

// sendBatch queues one statement per row and runs the whole batch inside a
// single transaction; any failed row aborts and rolls back the batch.
func (r *Repository) sendBatch(ctx context.Context, sql string, fields []records.Field, rows []records.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	batch := &pgx.Batch{}
	for _, row := range rows {
		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = row[f.Name]
		}
		batch.Queue(sql, args...)
	}

	br := tx.SendBatch(ctx, batch)
	var written int64
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("postgres: insert: %w", err)
		}
		written += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("postgres: batch close: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return written, nil
}

// UserTransactionSummary aggregates one user's transactions; ErrNotFound
// when the user has none.
func (r *Repository) UserTransactionSummary(ctx context.Context, userID int64) (storage.UserSummary, error) {
	const q = `
		SELECT
			u.user_id,
			u.country,
			SUM(t.amount)::float8,
			SUM(CASE WHEN t.transaction_type = 'deposit'    THEN t.amount ELSE 0 END)::float8,
			SUM(CASE WHEN t.transaction_type = 'withdrawal' THEN t.amount ELSE 0 END)::float8,
			SUM(CASE WHEN t.transaction_type = 'purchase'   THEN t.amount ELSE 0 END)::float8
		FROM users u
		JOIN transactions t ON u.user_id = t.user_id
		WHERE u.user_id = $1
		GROUP BY u.user_id, u.country`

	var s storage.UserSummary
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&s.UserID, &s.Country, &s.TotalAmount, &s.TotalDeposit, &s.TotalWithdrawal, &s.TotalPurchase,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.UserSummary{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.UserSummary{}, fmt.Errorf("postgres: user summary: %w", err)
	}
	return s, nil
}

// TopUsersByVolume ranks users by number of transactions, descending.
func (r *Repository) TopUsersByVolume(ctx context.Context, limit int) ([]storage.TopUser, error) {
	const q = `
		SELECT u.user_id, u.country, COUNT(t.transaction_id) AS transaction_count
		FROM users u
		JOIN transactions t ON u.user_id = t.user_id
		GROUP BY u.user_id, u.country
		ORDER BY transaction_count DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: top users: %w", err)
	}
	defer rows.Close()

	var out []storage.TopUser
	for rows.Next() {
		var u storage.TopUser
		if err := rows.Scan(&u.UserID, &u.Country, &u.TransactionCount); err != nil {
			return nil, fmt.Errorf("postgres: top users scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DailyTotals sums amounts per transaction date and type.
func (r *Repository) DailyTotals(ctx context.Context) ([]storage.DailyTotal, error) {
	const q = `
		SELECT t.transaction_date, t.transaction_type, SUM(t.amount)::float8 AS daily_total
		FROM transactions t
		GROUP BY t.transaction_date, t.transaction_type
		ORDER BY t.transaction_date ASC, t.transaction_type ASC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres: daily totals: %w", err)
	}
	defer rows.Close()

	var out []storage.DailyTotal
	for rows.Next() {
		var d storage.DailyTotal
		if err := rows.Scan(&d.TransactionDate, &d.TransactionType, &d.DailyTotal); err != nil {
			return nil, fmt.Errorf("postgres: daily totals scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
