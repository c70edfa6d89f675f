package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/tripledger/internal/apperr"
	"github.com/mmynk/tripledger/internal/models"
)

// MarkSettled marks a split as paid back. Settling an already-settled split
// succeeds and refreshes its timestamp.
func (e *Engine) MarkSettled(ctx context.Context, actorID, splitID string) (*models.ExpenseSplit, error) {
	return e.setSettled(ctx, actorID, splitID, true)
}

// MarkUnsettled reverts a split to unsettled and clears its timestamp.
func (e *Engine) MarkUnsettled(ctx context.Context, actorID, splitID string) (*models.ExpenseSplit, error) {
	return e.setSettled(ctx, actorID, splitID, false)
}

// setSettled is allowed for the split's debtor and for the expense payer.
func (e *Engine) setSettled(ctx context.Context, actorID, splitID string, settled bool) (*models.ExpenseSplit, error) {
	split, err := e.store.GetSplit(ctx, splitID)
	if err != nil {
		return nil, storeErr(err, "split %s not found", splitID)
	}
	expense, err := e.store.GetExpense(ctx, split.ExpenseID)
	if err != nil {
		return nil, storeErr(err, "expense %s not found", split.ExpenseID)
	}

	if actorID == "" || (actorID != split.UserID && actorID != expense.PayerID) {
		return nil, e.reject(reasonAuthorization,
			apperr.Authorization("only the debtor or the payer can change the settlement of split %s", splitID))
	}

	var settledAt *time.Time
	if settled {
		at := e.now().UTC().Truncate(time.Millisecond)
		settledAt = &at
	}

	updated, err := e.store.SetSplitSettled(ctx, splitID, settled, settledAt)
	if err != nil {
		return nil, storeErr(err, "split %s not found", splitID)
	}

	e.metrics.SettlementChanged(settled)
	slog.Info("Split settlement changed",
		"split_id", splitID,
		"expense_id", split.ExpenseID,
		"actor_id", actorID,
		"settled", settled,
	)
	return updated, nil
}
