package cleaner

import (
	"txnetl/internal/logger"
	"txnetl/internal/records"
	"txnetl/internal/validate"
)

// Rejection reasons, one per stage. The null check for a primary key always
// precedes its positivity check, and both precede the duplicate sweep, so a
// null key is never counted as a duplicate and the positivity predicate never
// sees nil.
const (
	ReasonMissingUserID        = "missing_user_id"
	ReasonInvalidUserID        = "invalid_user_id"
	ReasonInvalidSignupDate    = "invalid_signup_date"
	ReasonMissingCountry       = "missing_country"
	ReasonDuplicateUserID      = "duplicate_user_id"
	ReasonMissingTransactionID = "missing_transaction_id"
	ReasonInvalidTransactionID = "invalid_transaction_id"
	ReasonInvalidDate          = "invalid_transaction_date"
	ReasonInvalidAmount        = "invalid_amount"
	ReasonInvalidType          = "invalid_transaction_type"
	ReasonDuplicateTransaction = "duplicate_transaction_id"
)

// Users builds the fixed cleaning pipeline for the users entity.
func Users(log logger.Logger, reject RejectFunc) Pipeline {
	return Pipeline{
		Entity: "users",
		Stages: []Stage{
			{Reason: ReasonMissingUserID, Keep: func(r records.Row) bool {
				return validate.NonNull(r[records.ColUserID])
			}},
			{Reason: ReasonInvalidUserID, Keep: func(r records.Row) bool {
				return validate.PositiveInt(r[records.ColUserID])
			}},
			{Reason: ReasonInvalidSignupDate, Keep: func(r records.Row) bool {
				return validate.ValidDate(r[records.ColSignupDate])
			}},
			{Reason: ReasonMissingCountry, Keep: func(r records.Row) bool {
				return validate.NonNull(r[records.ColCountry])
			}},
		},
		Key:       records.ColUserID,
		DupReason: ReasonDuplicateUserID,
		Log:       log,
		Reject:    reject,
	}
}

// Transactions builds the fixed cleaning pipeline for the transactions
// entity. The user_id field is only checked for presence; referential
// integrity against the users table is left to the storage layer.
func Transactions(log logger.Logger, reject RejectFunc) Pipeline {
	return Pipeline{
		Entity: "transactions",
		Stages: []Stage{
			{Reason: ReasonMissingTransactionID, Keep: func(r records.Row) bool {
				return validate.NonNull(r[records.ColTransactionID])
			}},
			{Reason: ReasonInvalidTransactionID, Keep: func(r records.Row) bool {
				return validate.PositiveInt(r[records.ColTransactionID])
			}},
			{Reason: ReasonMissingUserID, Keep: func(r records.Row) bool {
				return validate.NonNull(r[records.ColUserID])
			}},
			{Reason: ReasonInvalidDate, Keep: func(r records.Row) bool {
				return validate.ValidDate(r[records.ColTransactionDate])
			}},
			{Reason: ReasonInvalidAmount, Keep: func(r records.Row) bool {
				return validate.PositiveAmount(r[records.ColAmount])
			}},
			{Reason: ReasonInvalidType, Keep: func(r records.Row) bool {
				return validate.KnownTransactionType(r[records.ColTransactionType])
			}},
		},
		Key:       records.ColTransactionID,
		DupReason: ReasonDuplicateTransaction,
		Log:       log,
		Reject:    reject,
	}
}
