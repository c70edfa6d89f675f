package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an expense.
type Category string

const (
	CategoryAccommodation  Category = "accommodation"
	CategoryTransportation Category = "transportation"
	CategoryFood           Category = "food"
	CategoryActivities     Category = "activities"
	CategoryShopping       Category = "shopping"
	CategoryEntertainment  Category = "entertainment"
	CategorySettlement     Category = "settlement"
	CategoryOther          Category = "other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryAccommodation,
	CategoryTransportation,
	CategoryFood,
	CategoryActivities,
	CategoryShopping,
	CategoryEntertainment,
	CategorySettlement,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DateLayout is the calendar-date format of ExpenseDate.
const DateLayout = "2006-01-02"

// Expense represents one payment event on a trip.
//
// A settlement-category expense records one participant repaying others: the
// payer is the person repaying and the splits name the recipients.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	TripID string

	// PayerID is the participant who paid.
	PayerID string

	// ActivityID optionally links the expense to a trip activity.
	ActivityID string

	// Amount is positive with two decimals at rest.
	Amount decimal.Decimal

	// Currency is a label; it is never converted.
	Currency string

	Category Category

	// Description is optional, at most 500 characters.
	Description string

	// ExpenseDate is the calendar date of the expense (YYYY-MM-DD).
	ExpenseDate string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSettlement reports whether the expense records a repayment.
func (e *Expense) IsSettlement() bool {
	return e.Category == CategorySettlement
}

// ExpenseWithSplits combines an expense with its current split set.
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []ExpenseSplit
}
