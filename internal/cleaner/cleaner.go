// Package cleaner implements the batch cleaning pipeline: an ordered chain of
// filter stages, each testing one constraint against the survivors of the
// previous stage, followed by an in-batch duplicate sweep on the primary key.
//
// Because every stage only sees the survivors of the stage before it, a row
// is dropped by at most one stage, so the per-reason counts partition the
// input exactly: accepted + sum(dropped) == read.
package cleaner

import (
	"txnetl/internal/logger"
	"txnetl/internal/records"
)

// Stage is one ordered filter step. Keep reports whether a row survives; rows
// it rejects are tallied under Reason.
type Stage struct {
	Reason string
	Keep   func(records.Row) bool
}

// RejectedRow is handed to the optional reject sink for every dropped row.
type RejectedRow struct {
	Row    records.Row
	Reason string
}

// RejectFunc receives rejected rows, e.g. for an audit file. May be nil.
type RejectFunc func(RejectedRow)

// Result is the outcome of one pipeline run over one batch.
type Result struct {
	Read     int
	Accepted []records.Row
	Dropped  map[string]int
}

// TotalDropped is the sum of all reason counts.
func (r Result) TotalDropped() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Pipeline applies its stages in order, then removes in-batch duplicates of
// Key (when set), tallying those under DupReason.
type Pipeline struct {
	Entity    string
	Stages    []Stage
	Key       string
	DupReason string
	Log       logger.Logger
	Reject    RejectFunc
}

// Run executes the pipeline over in and returns a fresh Result: accepted rows
// are clones, so the output shares no state with the input batch. Dropped
// contains an entry for every stage, zero or not. Empty input is not an
// error; it yields zero rows and all-zero counters.
func (p Pipeline) Run(in []records.Row) Result {
	res := Result{
		Read:     len(in),
		Accepted: make([]records.Row, 0, len(in)),
		Dropped:  make(map[string]int, len(p.Stages)+1),
	}
	for _, st := range p.Stages {
		res.Dropped[st.Reason] = 0
	}
	if p.DupReason != "" {
		res.Dropped[p.DupReason] = 0
	}

	survivors := in
	for _, st := range p.Stages {
		kept := make([]records.Row, 0, len(survivors))
		for _, row := range survivors {
			if st.Keep(row) {
				kept = append(kept, row)
				continue
			}
			res.Dropped[st.Reason]++
			p.reject(row, st.Reason)
		}
		survivors = kept
	}

	if p.Key != "" {
		survivors = p.dropDuplicates(survivors, &res)
	}

	for _, row := range survivors {
		res.Accepted = append(res.Accepted, row.Clone())
	}

	if p.Log != nil {
		p.Log.Info("batch cleaned",
			"entity", p.Entity,
			"read", res.Read,
			"accepted", len(res.Accepted),
			"dropped", res.TotalDropped(),
		)
	}
	return res
}

// dropDuplicates removes every row whose key value appears more than once in
// the batch. All occurrences are dropped, not just the second and later ones;
// the reason count therefore equals the number of rows removed, n per
// duplicated key, never n-1. Rows without a key value pass through untouched
// (the missing-key stage has already run by the time this executes).
func (p Pipeline) dropDuplicates(in []records.Row, res *Result) []records.Row {
	seen := make(map[any]int, len(in))
	for _, row := range in {
		if v := row[p.Key]; v != nil {
			seen[v]++
		}
	}

	out := make([]records.Row, 0, len(in))
	for _, row := range in {
		v := row[p.Key]
		if v != nil && seen[v] > 1 {
			res.Dropped[p.DupReason]++
			p.reject(row, p.DupReason)
			continue
		}
		out = append(out, row)
	}
	return out
}

func (p Pipeline) reject(row records.Row, reason string) {
	if p.Reject != nil {
		p.Reject(RejectedRow{Row: row, Reason: reason})
	}
}
