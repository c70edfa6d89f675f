package models

import "github.com/shopspring/decimal"

// Balance is one participant's derived position across a trip.
// All fields are rounded to cents.
type Balance struct {
	UserID string

	// TotalPaid sums the non-settlement expenses this participant paid.
	TotalPaid decimal.Decimal

	// TotalOwed sums this participant's splits on non-settlement expenses,
	// settled or not.
	TotalOwed decimal.Decimal

	// SettlementsPaid sums settlement expenses this participant paid.
	SettlementsPaid decimal.Decimal

	// SettlementsReceived sums settlement splits naming this participant.
	SettlementsReceived decimal.Decimal

	// NetBalance is positive when the group owes this participant and
	// negative when this participant owes the group.
	NetBalance decimal.Decimal
}

// BudgetStatus classifies total spend against a declared budget.
type BudgetStatus string

const (
	BudgetOK       BudgetStatus = "ok"
	BudgetWarning  BudgetStatus = "warning"
	BudgetExceeded BudgetStatus = "exceeded"
)

// BalanceSheet is the full balance response for a trip.
type BalanceSheet struct {
	TripID       string
	Currency     string
	Participants []Balance

	// TotalSpend sums every non-settlement expense.
	TotalSpend decimal.Decimal

	// Budget and BudgetStatus are nil when the trip declares no budget.
	Budget       *decimal.Decimal
	BudgetStatus *BudgetStatus

	// Transfers suggests payments that would bring every balance to zero.
	Transfers []Transfer
}
