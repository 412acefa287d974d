package records

// Column names for the two entity types. The CSV headers, the cleaning
// stages, and the storage backends all key on these.
const (
	ColUserID          = "user_id"
	ColSignupDate      = "signup_date"
	ColCountry         = "country"
	ColTransactionID   = "transaction_id"
	ColTransactionDate = "transaction_date"
	ColAmount          = "amount"
	ColTransactionType = "transaction_type"
)

// Field kinds drive the parser's coercion of raw CSV cells.
const (
	KindInt    = "int"    // strconv.ParseInt -> int64
	KindDate   = "date"   // kept as string; format checked by validators
	KindAmount = "amount" // decimal.NewFromString -> decimal.Decimal
	KindText   = "text"   // kept as string
)

// Field describes one column of an entity: its canonical name and how the
// parser should coerce its raw value.
type Field struct {
	Name string
	Kind string
}

// UserFields is the fixed column set of the users entity, in storage order.
func UserFields() []Field {
	return []Field{
		{Name: ColUserID, Kind: KindInt},
		{Name: ColSignupDate, Kind: KindDate},
		{Name: ColCountry, Kind: KindText},
	}
}

// TransactionFields is the fixed column set of the transactions entity, in
// storage order.
func TransactionFields() []Field {
	return []Field{
		{Name: ColTransactionID, Kind: KindInt},
		{Name: ColUserID, Kind: KindInt},
		{Name: ColTransactionDate, Kind: KindDate},
		{Name: ColAmount, Kind: KindAmount},
		{Name: ColTransactionType, Kind: KindText},
	}
}

// Names returns the column names of fields in order.
func Names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}
