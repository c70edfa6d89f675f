package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperr"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

var hundred = decimal.NewFromInt(100)

// ShareIntent is one participant's requested share of an expense.
// Amount wins when both fields are set; Percentage alone derives the amount.
type ShareIntent struct {
	UserID     string
	Amount     *decimal.Decimal
	Percentage *decimal.Decimal
}

// SplitPlan describes how an expense is divided. With Equal set, Shares is
// ignored and the total is divided among every active participant.
type SplitPlan struct {
	Equal  bool
	Shares []ShareIntent
}

// Empty reports whether the plan requests no splits at all.
func (p SplitPlan) Empty() bool {
	return !p.Equal && len(p.Shares) == 0
}

// Options carries the numeric rules of allocation.
type Options struct {
	// Tolerance is the largest accepted gap between the split sum and the total.
	Tolerance decimal.Decimal
}

// Allocate resolves plan into concrete per-participant amounts for total.
//
// participants is the trip's active participant set. Every failure is a
// validation error and the checks run in a fixed order: recipients are active
// participants, each share resolves to a positive amount, and the shares sum
// to total within opts.Tolerance. Equal shares are rounded independently and
// the residue is left in place, so the sum check does not apply to them.
func Allocate(total decimal.Decimal, participants []string, plan SplitPlan, opts Options) ([]models.SplitAllocation, error) {
	if plan.Equal {
		return allocateEqual(total, participants)
	}
	return allocateShares(total, participants, plan.Shares, opts)
}

func allocateEqual(total decimal.Decimal, participants []string) ([]models.SplitAllocation, error) {
	if len(participants) == 0 {
		return nil, apperr.Validation("cannot split evenly: trip has no active participants")
	}

	amount := EqualShare(total, len(participants))
	pct := EqualShare(hundred, len(participants))

	if !amount.IsPositive() {
		return nil, apperr.Validation("split amount for each of %d participants rounds to %s; amounts must be greater than 0",
			len(participants), money.Format(amount))
	}

	out := make([]models.SplitAllocation, len(participants))
	for i, userID := range participants {
		p := pct
		out[i] = models.SplitAllocation{UserID: userID, Amount: amount, Percentage: &p}
	}
	return out, nil
}

// EqualShare is total divided by n, rounded to cents.
func EqualShare(total decimal.Decimal, n int) decimal.Decimal {
	return money.RoundToCents(total.Div(decimal.NewFromInt(int64(n))))
}

// IsEqualSplit reports whether amounts are exactly the equal allocation of
// total: every amount is EqualShare(total, len(amounts)).
func IsEqualSplit(total decimal.Decimal, amounts []decimal.Decimal) bool {
	if len(amounts) == 0 {
		return false
	}
	want := EqualShare(total, len(amounts))
	for _, a := range amounts {
		if !a.Equal(want) {
			return false
		}
	}
	return true
}

func allocateShares(total decimal.Decimal, participants []string, shares []ShareIntent, opts Options) ([]models.SplitAllocation, error) {
	if len(shares) == 0 {
		return nil, apperr.Validation("at least one split is required")
	}

	active := make(map[string]bool, len(participants))
	for _, p := range participants {
		active[p] = true
	}

	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if s.UserID == "" {
			return nil, apperr.Validation("split user_id is required")
		}
		if !active[s.UserID] {
			return nil, apperr.Validation("user %s is not an active participant of this trip", s.UserID)
		}
		if seen[s.UserID] {
			return nil, apperr.Validation("user %s appears in more than one split", s.UserID)
		}
		seen[s.UserID] = true
	}

	out := make([]models.SplitAllocation, len(shares))
	for i, s := range shares {
		alloc, err := resolveShare(total, s)
		if err != nil {
			return nil, err
		}
		out[i] = alloc
	}

	if err := checkSum(total, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveShare(total decimal.Decimal, s ShareIntent) (models.SplitAllocation, error) {
	alloc := models.SplitAllocation{UserID: s.UserID}

	if s.Percentage != nil {
		if s.Percentage.IsNegative() || s.Percentage.GreaterThan(hundred) {
			return alloc, apperr.Validation("percentage for user %s must be between 0 and 100, got %s",
				s.UserID, s.Percentage.String())
		}
		pct := money.RoundToCents(*s.Percentage)
		alloc.Percentage = &pct
	}

	switch {
	case s.Amount != nil:
		alloc.Amount = money.RoundToCents(*s.Amount)
	case s.Percentage != nil:
		alloc.Amount = money.RoundToCents(total.Mul(*s.Percentage).Div(hundred))
	default:
		return alloc, apperr.Validation("split for user %s needs an amount or a percentage", s.UserID)
	}

	if !alloc.Amount.IsPositive() {
		return alloc, apperr.Validation("split amount for user %s must be greater than 0, got %s",
			s.UserID, money.Format(alloc.Amount))
	}
	return alloc, nil
}

func checkSum(total decimal.Decimal, allocs []models.SplitAllocation, opts Options) error {
	amounts := make([]decimal.Decimal, len(allocs))
	for i, a := range allocs {
		amounts[i] = a.Amount
	}
	return ValidateSum(total, amounts, opts.Tolerance)
}

// ValidateSum checks that amounts add up to total within tolerance. The error
// lists every amount, the sum and the total with two decimals.
func ValidateSum(total decimal.Decimal, amounts []decimal.Decimal, tolerance decimal.Decimal) error {
	sum := money.Sum(amounts...)
	if money.WithinTolerance(sum, total, tolerance) {
		return nil
	}

	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = money.Format(a)
	}
	return apperr.Validation("split amounts %s = %s do not match expense amount %s",
		strings.Join(parts, " + "), money.Format(sum), money.Format(total))
}
