package models

import "github.com/shopspring/decimal"

// Transfer is a suggested payment between participants to clear balances.
// Recording it is done with a settlement-category Expense paid by From with a
// single split for To.
type Transfer struct {
	// From is the participant who owes (negative net balance).
	From string

	// To is the participant who is owed (positive net balance).
	To string

	Amount decimal.Decimal
}
