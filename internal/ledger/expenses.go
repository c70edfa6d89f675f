package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperr"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// CreateExpenseInput describes a new expense.
type CreateExpenseInput struct {
	TripID string `json:"trip_id" validate:"required"`

	// PayerID defaults to the acting user.
	PayerID    string `json:"payer_id"`
	ActivityID string `json:"activity_id"`

	Amount decimal.Decimal `json:"amount" validate:"gt=0"`

	// Currency defaults to the trip currency.
	Currency    string          `json:"currency" validate:"omitempty,iso4217"`
	Category    models.Category `json:"category" validate:"required,category"`
	Description string          `json:"description" validate:"max=500"`
	ExpenseDate string          `json:"expense_date" validate:"required,datetime=2006-01-02"`

	// Splits is optional; an empty plan stores the expense without splits.
	Splits calculator.SplitPlan `json:"-" validate:"-"`
}

// UpdateExpenseInput lists the mutable columns of an expense. Nil fields are
// left unchanged. A non-nil Splits replaces every existing split.
type UpdateExpenseInput struct {
	Amount      *decimal.Decimal      `json:"amount" validate:"omitnil,gt=0"`
	Currency    *string               `json:"currency" validate:"omitnil,iso4217"`
	Category    *models.Category      `json:"category" validate:"omitnil,category"`
	Description *string               `json:"description" validate:"omitnil,max=500"`
	ExpenseDate *string               `json:"expense_date" validate:"omitnil,datetime=2006-01-02"`
	ActivityID  *string               `json:"activity_id"`
	Splits      *calculator.SplitPlan `json:"-" validate:"-"`
}

// CreateExpense validates and allocates a new expense, then stores it and all
// of its splits in one transaction.
func (e *Engine) CreateExpense(ctx context.Context, actorID string, in CreateExpenseInput) (*models.ExpenseWithSplits, error) {
	in.Amount = money.RoundToCents(in.Amount)
	if err := e.check(in); err != nil {
		return nil, err
	}

	trip, err := e.loadTrip(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if err := e.requireParticipant(ctx, trip.ID, actorID); err != nil {
		return nil, err
	}

	payerID := in.PayerID
	if payerID == "" {
		payerID = actorID
	}
	if payerID != actorID {
		active, err := e.isActive(ctx, trip.ID, payerID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, e.reject(reasonField,
				apperr.Validation("payer %s is not an active participant of this trip", payerID))
		}
	}

	currency := in.Currency
	if currency == "" {
		currency = trip.Currency
	}

	if in.Category == models.CategorySettlement {
		if err := e.checkSettlementPlan(payerID, in.Splits); err != nil {
			return nil, err
		}
	}

	var splits []models.ExpenseSplit
	if !in.Splits.Empty() {
		splits, err = e.allocate(ctx, trip.ID, in.Amount, in.Splits)
		if err != nil {
			return nil, err
		}
	}

	expense := &models.Expense{
		TripID:      trip.ID,
		PayerID:     payerID,
		ActivityID:  in.ActivityID,
		Amount:      in.Amount,
		Currency:    currency,
		Category:    in.Category,
		Description: in.Description,
		ExpenseDate: in.ExpenseDate,
	}

	saved, err := e.store.CreateExpense(ctx, expense, splits)
	if err != nil {
		return nil, storeErr(err, "trip %s not found", trip.ID)
	}

	e.metrics.ExpenseWritten(metrics.OpCreate)
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"trip_id", trip.ID,
		"payer_id", payerID,
		"amount", money.Format(expense.Amount),
		"category", expense.Category,
		"splits", len(saved),
	)

	return &models.ExpenseWithSplits{Expense: expense, Splits: saved}, nil
}

// UpdateExpense applies the non-nil fields of in. Only the payer or the trip
// owner may call it.
func (e *Engine) UpdateExpense(ctx context.Context, actorID, expenseID string, in UpdateExpenseInput) (*models.ExpenseWithSplits, error) {
	if in.Amount != nil {
		rounded := money.RoundToCents(*in.Amount)
		in.Amount = &rounded
	}
	if err := e.check(in); err != nil {
		return nil, err
	}

	existing, err := e.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, storeErr(err, "expense %s not found", expenseID)
	}
	trip, err := e.loadTrip(ctx, existing.TripID)
	if err != nil {
		return nil, err
	}
	if err := e.requireEditor(trip, existing, actorID); err != nil {
		return nil, err
	}

	updated := *existing
	if in.Amount != nil {
		updated.Amount = *in.Amount
	}
	if in.Currency != nil {
		updated.Currency = *in.Currency
	}
	if in.Category != nil {
		updated.Category = *in.Category
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.ExpenseDate != nil {
		updated.ExpenseDate = *in.ExpenseDate
	}
	if in.ActivityID != nil {
		updated.ActivityID = *in.ActivityID
	}

	replace := in.Splits != nil
	var splits []models.ExpenseSplit

	if replace {
		if updated.IsSettlement() {
			if err := e.checkSettlementPlan(updated.PayerID, *in.Splits); err != nil {
				return nil, err
			}
		}
		splits, err = e.allocate(ctx, trip.ID, updated.Amount, *in.Splits)
		if err != nil {
			return nil, err
		}
	} else if in.Amount != nil || updated.IsSettlement() {
		// Kept splits must still match the amount and the category.
		current, err := e.store.ListSplitsByExpense(ctx, expenseID)
		if err != nil {
			return nil, storeErr(err, "expense %s not found", expenseID)
		}
		if err := e.checkKeptSplits(&updated, current); err != nil {
			return nil, err
		}
	}

	saved, err := e.store.UpdateExpense(ctx, &updated, splits, replace)
	if err != nil {
		return nil, storeErr(err, "expense %s not found", expenseID)
	}

	e.metrics.ExpenseWritten(metrics.OpUpdate)
	slog.Info("Expense updated",
		"expense_id", expenseID,
		"trip_id", trip.ID,
		"actor_id", actorID,
		"splits_replaced", replace,
		"splits", len(saved),
	)

	return &models.ExpenseWithSplits{Expense: &updated, Splits: saved}, nil
}

// ReplaceSplits deletes every split of the expense and stores the plan's
// allocation in their place.
func (e *Engine) ReplaceSplits(ctx context.Context, actorID, expenseID string, plan calculator.SplitPlan) ([]models.ExpenseSplit, error) {
	res, err := e.UpdateExpense(ctx, actorID, expenseID, UpdateExpenseInput{Splits: &plan})
	if err != nil {
		return nil, err
	}
	return res.Splits, nil
}

// DeleteExpense removes the expense and its splits. Only the payer or the
// trip owner may call it.
func (e *Engine) DeleteExpense(ctx context.Context, actorID, expenseID string) error {
	expense, err := e.store.GetExpense(ctx, expenseID)
	if err != nil {
		return storeErr(err, "expense %s not found", expenseID)
	}
	trip, err := e.loadTrip(ctx, expense.TripID)
	if err != nil {
		return err
	}
	if err := e.requireEditor(trip, expense, actorID); err != nil {
		return err
	}

	if err := e.store.DeleteExpense(ctx, expenseID); err != nil {
		return storeErr(err, "expense %s not found", expenseID)
	}

	e.metrics.ExpenseWritten(metrics.OpDelete)
	slog.Info("Expense deleted", "expense_id", expenseID, "trip_id", trip.ID, "actor_id", actorID)
	return nil
}

// GetExpense returns an expense with its splits to any active participant.
func (e *Engine) GetExpense(ctx context.Context, actorID, expenseID string) (*models.ExpenseWithSplits, error) {
	expense, err := e.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, storeErr(err, "expense %s not found", expenseID)
	}
	if err := e.requireParticipant(ctx, expense.TripID, actorID); err != nil {
		return nil, err
	}

	splits, err := e.store.ListSplitsByExpense(ctx, expenseID)
	if err != nil {
		return nil, storeErr(err, "expense %s not found", expenseID)
	}
	return &models.ExpenseWithSplits{Expense: expense, Splits: splits}, nil
}

// ListExpenses returns every expense of a trip with its splits, newest first.
func (e *Engine) ListExpenses(ctx context.Context, actorID, tripID string) ([]models.ExpenseWithSplits, error) {
	trip, err := e.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := e.requireParticipant(ctx, trip.ID, actorID); err != nil {
		return nil, err
	}

	expenses, splits, err := e.store.LoadTripLedger(ctx, trip.ID)
	if err != nil {
		return nil, storeErr(err, "trip %s not found", trip.ID)
	}

	byExpense := make(map[string][]models.ExpenseSplit, len(expenses))
	for _, s := range splits {
		byExpense[s.ExpenseID] = append(byExpense[s.ExpenseID], s)
	}

	out := make([]models.ExpenseWithSplits, len(expenses))
	for i, expense := range expenses {
		out[i] = models.ExpenseWithSplits{Expense: expense, Splits: byExpense[expense.ID]}
	}
	return out, nil
}

// allocate resolves plan against the trip's current participants.
func (e *Engine) allocate(ctx context.Context, tripID string, amount decimal.Decimal, plan calculator.SplitPlan) ([]models.ExpenseSplit, error) {
	participants, err := e.store.ListActiveParticipants(ctx, tripID)
	if err != nil {
		return nil, storeErr(err, "trip %s not found", tripID)
	}

	allocs, err := calculator.Allocate(amount, participants, plan, e.allocOptions())
	if err != nil {
		return nil, e.reject(reasonSplit, err)
	}

	splits := make([]models.ExpenseSplit, len(allocs))
	for i, a := range allocs {
		splits[i] = a.ToSplit("")
	}
	return splits, nil
}

// checkSettlementPlan requires a settlement to name its recipients and keeps
// the payer out of them.
func (e *Engine) checkSettlementPlan(payerID string, plan calculator.SplitPlan) error {
	if plan.Equal {
		return e.reject(reasonSplit,
			apperr.Validation("settlement expenses must name their recipients; equal split is not allowed"))
	}
	userIDs := make([]string, len(plan.Shares))
	for i, s := range plan.Shares {
		userIDs[i] = s.UserID
	}
	return e.checkRecipients(payerID, userIDs)
}

func (e *Engine) checkRecipients(payerID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return e.reject(reasonSplit,
			apperr.Validation("settlement expenses need at least one recipient split"))
	}
	for _, userID := range userIDs {
		if userID == payerID {
			return e.reject(reasonSplit,
				apperr.Validation("payer %s cannot be a recipient of their own settlement", payerID))
		}
	}
	return nil
}

// checkKeptSplits validates splits that survive an update without replacement.
// Kept splits that are exactly an equal allocation of the amount pass with
// their residue, like a fresh equal split.
func (e *Engine) checkKeptSplits(expense *models.Expense, splits []models.ExpenseSplit) error {
	if expense.IsSettlement() {
		userIDs := make([]string, len(splits))
		for i, s := range splits {
			userIDs[i] = s.UserID
		}
		if err := e.checkRecipients(expense.PayerID, userIDs); err != nil {
			return err
		}
	}

	if len(splits) == 0 {
		return nil
	}
	amounts := make([]decimal.Decimal, len(splits))
	for i, s := range splits {
		amounts[i] = s.Amount
	}
	if calculator.IsEqualSplit(expense.Amount, amounts) {
		return nil
	}
	if err := calculator.ValidateSum(expense.Amount, amounts, e.cfg.Tolerance); err != nil {
		return e.reject(reasonSplit, err)
	}
	return nil
}
