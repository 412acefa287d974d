// Package ingest orchestrates one ETL run: read both CSV files, clean each
// batch through its entity pipeline, and write the accepted rows to the
// store. Users load before transactions; a transactions failure leaves the
// already-written users in place.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"

	"txnetl/internal/cleaner"
	"txnetl/internal/logger"
	"txnetl/internal/metrics"
	parser "txnetl/internal/parser/csv"
	"txnetl/internal/records"
	"txnetl/internal/skiplog"
	"txnetl/internal/storage"
)

// Sentinel errors for the two failure classes an ingestion run can hit.
// Callers distinguish them with errors.Is; the wrapped error carries the
// file and entity context.
var (
	ErrParse   = errors.New("parse failed")
	ErrStorage = errors.New("storage failed")
)

// Options tunes one ingestion run.
type Options struct {
	// ResetTables drops both tables before recreating the schema, giving a
	// clean load instead of an incremental one.
	ResetTables bool

	// RejectDir is where the per-entity rejected-row audit files go. Empty
	// disables the audit files; rejection counts are tallied either way.
	RejectDir string
}

// EntityReport summarizes one entity's trip through the pipeline.
type EntityReport struct {
	Entity   string         `json:"entity"`
	Read     int            `json:"rows_read"`
	Accepted int            `json:"rows_accepted"`
	Written  int64          `json:"rows_written"`
	Dropped  map[string]int `json:"rows_dropped"`
}

// Report is the outcome of a full run.
type Report struct {
	Users        EntityReport `json:"users"`
	Transactions EntityReport `json:"transactions"`
}

// Orchestrator wires the parser, cleaner, and store together for a run.
type Orchestrator struct {
	store storage.Store
	log   logger.Logger
	opt   Options
}

// New constructs an Orchestrator over an open store.
func New(store storage.Store, log logger.Logger, opt Options) *Orchestrator {
	return &Orchestrator{store: store, log: log, opt: opt}
}

// Ingest runs the full pipeline for both entities. The returned Report is
// valid for every entity that completed, even when the run errors partway.
func (o *Orchestrator) Ingest(ctx context.Context, usersPath, transactionsPath string) (Report, error) {
	var rep Report

	if o.opt.ResetTables {
		if err := o.store.DropTables(ctx); err != nil {
			return rep, fmt.Errorf("%w: drop tables: %v", ErrStorage, err)
		}
		o.log.Info("tables dropped for clean load")
	}
	if err := o.store.EnsureSchema(ctx); err != nil {
		return rep, fmt.Errorf("%w: ensure schema: %v", ErrStorage, err)
	}

	users, err := o.ingestEntity(ctx, entityJob{
		name:     "users",
		path:     usersPath,
		fields:   records.UserFields(),
		pipeline: cleaner.Users,
		write:    o.store.UpsertIgnoreUsers,
	})
	rep.Users = users
	if err != nil {
		return rep, err
	}

	transactions, err := o.ingestEntity(ctx, entityJob{
		name:     "transactions",
		path:     transactionsPath,
		fields:   records.TransactionFields(),
		pipeline: cleaner.Transactions,
		write:    o.store.UpsertReplaceTransactions,
	})
	rep.Transactions = transactions
	if err != nil {
		return rep, err
	}

	o.log.Info("ingestion complete",
		"users_written", rep.Users.Written,
		"transactions_written", rep.Transactions.Written,
	)
	return rep, nil
}

// entityJob bundles everything that differs between the two entities.
type entityJob struct {
	name     string
	path     string
	fields   []records.Field
	pipeline func(logger.Logger, cleaner.RejectFunc) cleaner.Pipeline
	write    func(context.Context, []records.Row) (int64, error)
}

func (o *Orchestrator) ingestEntity(ctx context.Context, job entityJob) (EntityReport, error) {
	rep := EntityReport{Entity: job.name, Dropped: map[string]int{}}
	log := o.log.With("entity", job.name, "file", job.path)

	data, err := os.ReadFile(job.path)
	if err != nil {
		return rep, fmt.Errorf("%w: %s: %v", ErrParse, job.path, err)
	}
	log.Debug("file loaded",
		"bytes", len(data),
		"fingerprint", fmt.Sprintf("%016x", xxh3.Hash(data)),
	)

	start := time.Now()
	rows, err := parser.NewParser(job.fields, parser.Options{TrimSpace: true}).Parse(bytes.NewReader(data))
	metrics.RecordStep(job.name, "parse", err, time.Since(start))
	if err != nil {
		return rep, fmt.Errorf("%w: %s: %v", ErrParse, job.path, err)
	}
	rep.Read = len(rows)
	metrics.RecordRows(job.name, "read", int64(rep.Read))

	reject, closeReject, err := o.rejectSink(job.name, job.fields)
	if err != nil {
		return rep, err
	}

	start = time.Now()
	res := job.pipeline(o.log, reject).Run(rows)
	metrics.RecordStep(job.name, "clean", nil, time.Since(start))
	if err := closeReject(); err != nil {
		log.Warn("closing rejected-rows audit file", "error", err)
	}
	rep.Accepted = len(res.Accepted)
	rep.Dropped = res.Dropped
	metrics.RecordRows(job.name, "accepted", int64(rep.Accepted))
	metrics.RecordRows(job.name, "rejected", int64(res.TotalDropped()))

	start = time.Now()
	written, err := job.write(ctx, res.Accepted)
	metrics.RecordStep(job.name, "write", err, time.Since(start))
	if err != nil {
		return rep, fmt.Errorf("%w: write %s: %v", ErrStorage, job.name, err)
	}
	rep.Written = written
	metrics.RecordRows(job.name, "written", written)

	log.Info("entity ingested",
		"read", rep.Read,
		"accepted", rep.Accepted,
		"written", rep.Written,
		"dropped", res.TotalDropped(),
	)
	return rep, nil
}

// rejectSink opens the entity's audit file when RejectDir is set. The
// returned close func is always safe to call.
func (o *Orchestrator) rejectSink(entity string, fields []records.Field) (cleaner.RejectFunc, func() error, error) {
	if o.opt.RejectDir == "" {
		return nil, func() error { return nil }, nil
	}

	path := filepath.Join(o.opt.RejectDir, entity+"_rejected.csv")
	w, err := skiplog.New(path, records.Names(fields))
	if err != nil {
		return nil, func() error { return nil }, fmt.Errorf("open reject audit: %w", err)
	}
	sink := func(r cleaner.RejectedRow) { w.Add(r.Reason, r.Row) }
	return sink, w.Close, nil
}
