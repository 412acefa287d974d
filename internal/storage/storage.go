// Package storage defines the storage-agnostic contract for the relational
// store: schema management, the two batched upsert operations, and the
// read-only aggregate queries served over HTTP. Concrete backends live in
// subpackages and register themselves with the factory at init time; import
// txnetl/internal/storage/all to make every built-in backend available.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"txnetl/internal/records"
)

// ErrNotFound is returned by point queries when no row matches.
var ErrNotFound = errors.New("storage: not found")

// UserSummary is one user's transaction totals, split per type.
type UserSummary struct {
	UserID          int64   `json:"user_id"`
	Country         string  `json:"country"`
	TotalAmount     float64 `json:"total_transaction_amount"`
	TotalDeposit    float64 `json:"total_deposit"`
	TotalWithdrawal float64 `json:"total_withdrawal"`
	TotalPurchase   float64 `json:"total_purchase"`
}

// TopUser is one entry of the top-users-by-volume ranking.
type TopUser struct {
	UserID           int64  `json:"user_id"`
	Country          string `json:"country"`
	TransactionCount int64  `json:"transaction_count"`
}

// DailyTotal is the summed amount for one date and transaction type.
type DailyTotal struct {
	TransactionDate string  `json:"transaction_date"`
	TransactionType string  `json:"transaction_type"`
	DailyTotal      float64 `json:"daily_total"`
}

// Store is the full storage contract. Upserts take the whole accepted batch
// and execute it as one transaction with one prepared statement; per-row
// looping inside the store is an implementation detail the caller never sees.
type Store interface {
	// EnsureSchema creates both entity tables if absent. Safe to call
	// repeatedly.
	EnsureSchema(ctx context.Context) error

	// DropTables removes both entity tables if present. Manual-testing
	// utility; transactions drops before users because of the FK.
	DropTables(ctx context.Context) error

	// UpsertIgnoreUsers inserts users by primary key, silently skipping
	// keys that already exist in the store. Returns rows actually written.
	UpsertIgnoreUsers(ctx context.Context, rows []records.Row) (int64, error)

	// UpsertReplaceTransactions inserts transactions by primary key,
	// overwriting stored rows that share a key. Returns rows written.
	UpsertReplaceTransactions(ctx context.Context, rows []records.Row) (int64, error)

	// UserTransactionSummary returns totals for one user, ErrNotFound when
	// the user has no transactions on record.
	UserTransactionSummary(ctx context.Context, userID int64) (UserSummary, error)

	// TopUsersByVolume ranks users by transaction count, descending.
	TopUsersByVolume(ctx context.Context, limit int) ([]TopUser, error)

	// DailyTotals sums amounts per date and transaction type, ordered by
	// date then type.
	DailyTotals(ctx context.Context) ([]DailyTotal, error)

	Close()
}

// Factory opens a Store for a DSN. Backends register one per kind.
type Factory func(ctx context.Context, dsn string) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a storage kind. Called from
// backend packages' init functions.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// Open builds a Store of the given kind. Kinds are available once their
// backend package has been imported (see storage/all).
func Open(ctx context.Context, kind, dsn string) (Store, error) {
	mu.RLock()
	fn, ok := factories[kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage backend registered for kind %q", kind)
	}
	return fn(ctx, dsn)
}
