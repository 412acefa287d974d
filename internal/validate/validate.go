// Package validate contains the pure field predicates used by the cleaning
// pipeline. Each function classifies a single value for one semantic type and
// carries no state; the pipeline decides stage order and bookkeeping.
package validate

import (
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout is the only accepted calendar date form: zero-padded
// year-month-day. time.Parse with a fixed-width layout rejects unpadded
// months/days, trailing text, and impossible dates.
const dateLayout = "2006-01-02"

// TransactionTypes is the closed set of recognized transaction types.
// Matching is case-sensitive.
var TransactionTypes = map[string]struct{}{
	"deposit":    {},
	"withdrawal": {},
	"purchase":   {},
}

// NonNull reports whether v is present. The parser maps empty CSV cells and
// absent columns to nil, so nil is the only missing sentinel; an empty string
// can still appear if a caller skips the parser, and counts as missing too.
func NonNull(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}

// PositiveInt reports whether v is an integer type with value > 0. A nil or
// non-integer value (including numeric text that failed coercion) is not
// positive. Callers must run the non-null check first; this predicate only
// answers "is this a usable primary key", not "is this present".
func PositiveInt(v any) bool {
	switch n := v.(type) {
	case int:
		return n > 0
	case int32:
		return n > 0
	case int64:
		return n > 0
	default:
		return false
	}
}

// ValidDate reports whether v is a string that parses exactly under
// dateLayout. Any other type, including nil, is invalid.
func ValidDate(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// PositiveAmount reports whether v is a decimal with value strictly > 0.
func PositiveAmount(v any) bool {
	d, ok := v.(decimal.Decimal)
	return ok && d.IsPositive()
}

// KnownTransactionType reports whether v is one of the fixed transaction
// types (exact, case-sensitive match).
func KnownTransactionType(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, known := TransactionTypes[s]
	return known
}
