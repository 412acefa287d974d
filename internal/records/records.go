// Package records defines the in-memory row representation shared by the
// parser, the cleaning pipeline, and the storage backends.
//
// A Row is a loosely typed map because the input is untrusted: a cell that
// should hold an integer may arrive as garbage text, and the cleaning stages
// need to see that raw value to classify the failure. The parser coerces
// values it can (int64 for integer columns, decimal.Decimal for amounts) and
// leaves the raw string in place when coercion fails, so validators can tell
// "missing" apart from "invalid".
package records

import "github.com/shopspring/decimal"

// Row is one record of a batch. Values are nil (missing), string, int64, or
// decimal.Decimal.
type Row map[string]any

// Clone returns a shallow copy of the row. Values are immutable scalars, so a
// shallow copy is enough to guarantee no aliasing between batches.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Int64 returns the int64 value for key, with ok=false when the value is
// missing or not an int64.
func (r Row) Int64(key string) (int64, bool) {
	v, ok := r[key].(int64)
	return v, ok
}

// String returns the string value for key, with ok=false when the value is
// missing or not a string.
func (r Row) String(key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// Decimal returns the decimal value for key, with ok=false when the value is
// missing or not a decimal.
func (r Row) Decimal(key string) (decimal.Decimal, bool) {
	v, ok := r[key].(decimal.Decimal)
	return v, ok
}
