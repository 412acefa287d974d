// Package metrics provides a small, backend-agnostic abstraction for
// recording operational counters from the ingestion pipeline.
//
// It exposes a narrow Backend interface and a global, pluggable backend that
// defaults to a no-op implementation, so metric calls are always safe even
// when no real backend is configured. Concrete systems (Prometheus
// Pushgateway) live in subpackages; the rest of the codebase depends only on
// this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal contract for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes metrics if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures one ingestion step: a latency observation plus a
// success/failure counter.
func RecordStep(entity, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"entity": entity, "step": step, "status": status}

	backend.IncCounter("ingest_step_total", 1, lbls)
	backend.ObserveDuration("ingest_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given entity and kind.
// Typical kinds mirror the ingestion report fields: "read", "accepted",
// "rejected", "written".
func RecordRows(entity, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ingest_rows_total", float64(delta), Labels{
		"entity": entity,
		"kind":   kind,
	})
}
