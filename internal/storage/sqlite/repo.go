// Package sqlite implements a SQLite-backed storage.Store using
// database/sql. Each upsert runs as one transaction around one prepared
// statement; SQLite has no bulk-load API like Postgres COPY, but a single
// transaction keeps batch writes fast enough for this workload.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, registered as "sqlite"

	"txnetl/internal/records"
	"txnetl/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, dsn string) (storage.Store, error) {
		return Open(ctx, dsn)
	})
}

// Repository is the SQLite storage.Store.
type Repository struct {
	db *sql.DB
}

// Open opens a SQLite database. The DSN is passed straight to database/sql,
// e.g. "transactions_data.db" or "file:etl.db?cache=shared".
func Open(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single writer keeps modernc.org/sqlite happy under database/sql
	// pooling, and matches the pipeline's single-threaded write model.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying pool.
func (r *Repository) Close() { _ = r.db.Close() }

// EnsureSchema creates the users and transactions tables if absent. The
// transactions table declares the user_id foreign key, but enforcement is
// not switched on (PRAGMA foreign_keys stays off): orphaned transactions are
// accepted by design, matching the cleaning pipeline's deliberate gap.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const usersDDL = `
		CREATE TABLE IF NOT EXISTS users (
			user_id     INTEGER PRIMARY KEY,
			signup_date TEXT,
			country     TEXT
		);`
	const transactionsDDL = `
		CREATE TABLE IF NOT EXISTS transactions (
			transaction_id   INTEGER PRIMARY KEY,
			user_id          INTEGER,
			transaction_date TEXT,
			amount           REAL,
			transaction_type TEXT,
			FOREIGN KEY (user_id) REFERENCES users (user_id)
		);`

	for _, ddl := range []string{usersDDL, transactionsDDL} {
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: create table: %w", err)
		}
	}
	return nil
}

// DropTables removes both tables if present.
func (r *Repository) DropTables(ctx context.Context) error {
	for _, table := range []string{"transactions", "users"} {
		if _, err := r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("sqlite: drop %s: %w", table, err)
		}
	}
	return nil
}

// UpsertIgnoreUsers writes the accepted users batch with INSERT OR IGNORE:
// a user_id already present in the store keeps its stored row.
func (r *Repository) UpsertIgnoreUsers(ctx context.Context, rows []records.Row) (int64, error) {
	return r.upsert(ctx, "INSERT OR IGNORE INTO users", records.UserFields(), rows)
}

// UpsertReplaceTransactions writes the accepted transactions batch with
// INSERT OR REPLACE: a transaction_id already present is overwritten.
func (r *Repository) UpsertReplaceTransactions(ctx context.Context, rows []records.Row) (int64, error) {
	return r.upsert(ctx, "INSERT OR REPLACE INTO transactions", records.TransactionFields(), rows)
}

// upsert executes one prepared statement for the whole batch inside a single
// transaction. Any failed row aborts and rolls back the entity's batch.
func (r *Repository) upsert(ctx context.Context, verb string, fields []records.Field, rows []records.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	cols := records.Names(fields)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmtSQL := fmt.Sprintf("%s (%s) VALUES (%s)", verb, strings.Join(cols, ", "), placeholders)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	var written int64
	for _, row := range rows {
		args := make([]any, len(cols))
		for i, c := range cols {
			args[i] = row[c]
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return written, nil
}

// UserTransactionSummary aggregates one user's transactions. Users without
// any transactions yield ErrNotFound, mirroring the inner join the API
// always served.
func (r *Repository) UserTransactionSummary(ctx context.Context, userID int64) (storage.UserSummary, error) {
	const q = `
		SELECT
			u.user_id,
			u.country,
			SUM(t.amount),
			SUM(CASE WHEN t.transaction_type = 'deposit'    THEN t.amount ELSE 0 END),
			SUM(CASE WHEN t.transaction_type = 'withdrawal' THEN t.amount ELSE 0 END),
			SUM(CASE WHEN t.transaction_type = 'purchase'   THEN t.amount ELSE 0 END)
		FROM users u
		JOIN transactions t ON u.user_id = t.user_id
		WHERE u.user_id = ?
		GROUP BY u.user_id, u.country`

	var s storage.UserSummary
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&s.UserID, &s.Country, &s.TotalAmount, &s.TotalDeposit, &s.TotalWithdrawal, &s.TotalPurchase,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.UserSummary{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.UserSummary{}, fmt.Errorf("sqlite: user summary: %w", err)
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
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: top users: %w", err)
	}
	defer rows.Close()

	var out []storage.TopUser
	for rows.Next() {
		var u storage.TopUser
		if err := rows.Scan(&u.UserID, &u.Country, &u.TransactionCount); err != nil {
			return nil, fmt.Errorf("sqlite: top users scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DailyTotals sums amounts per transaction date and type.
func (r *Repository) DailyTotals(ctx context.Context) ([]storage.DailyTotal, error) {
	const q = `
		SELECT t.transaction_date, t.transaction_type, SUM(t.amount) AS daily_total
		FROM transactions t
		GROUP BY t.transaction_date, t.transaction_type
		ORDER BY t.transaction_date ASC, t.transaction_type ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: daily totals: %w", err)
	}
	defer rows.Close()

	var out []storage.DailyTotal
	for rows.Next() {
		var d storage.DailyTotal
		if err := rows.Scan(&d.TransactionDate, &d.TransactionType, &d.DailyTotal); err != nil {
			return nil, fmt.Errorf("sqlite: daily totals scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
