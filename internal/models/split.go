package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseSplit is one participant's obligation against one Expense.
type ExpenseSplit struct {
	// ID is the unique identifier for the split (UUID format).
	// IDs do not survive a split replacement.
	ID string

	// ExpenseID is the owning expense.
	ExpenseID string

	// UserID is the debtor.
	UserID string

	// Amount is authoritative; positive with two decimals.
	Amount decimal.Decimal

	// Percentage is informational and may be nil.
	Percentage *decimal.Decimal

	Settled bool

	// SettledAt is set iff Settled.
	SettledAt *time.Time
}

// SplitAllocation is the allocator's output for one participant, before it
// is persisted as an ExpenseSplit.
type SplitAllocation struct {
	UserID     string
	Amount     decimal.Decimal
	Percentage *decimal.Decimal
}

// ToSplit converts the allocation into an unsaved split of expenseID.
func (a SplitAllocation) ToSplit(expenseID string) ExpenseSplit {
	return ExpenseSplit{
		ExpenseID:  expenseID,
		UserID:     a.UserID,
		Amount:     a.Amount,
		Percentage: a.Percentage,
	}
}
