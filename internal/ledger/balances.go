package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/models"
)

// ComputeBalances recomputes the trip's balance sheet from the current ledger.
// Nothing is cached between calls.
func (e *Engine) ComputeBalances(ctx context.Context, actorID, tripID string) (*models.BalanceSheet, error) {
	start := time.Now()
	defer e.metrics.ObserveBalanceCompute(start)

	trip, err := e.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := e.requireParticipant(ctx, trip.ID, actorID); err != nil {
		return nil, err
	}

	participants, err := e.store.ListActiveParticipants(ctx, trip.ID)
	if err != nil {
		return nil, storeErr(err, "trip %s not found", trip.ID)
	}
	expenses, splits, err := e.store.LoadTripLedger(ctx, trip.ID)
	if err != nil {
		return nil, storeErr(err, "trip %s not found", trip.ID)
	}

	balances := calculator.NetBalances(participants, expenses, splits)
	sheet := &models.BalanceSheet{
		TripID:       trip.ID,
		Currency:     trip.Currency,
		Participants: balances,
		TotalSpend:   calculator.TotalSpend(expenses),
		Transfers:    calculator.SuggestTransfers(balances),
	}

	if trip.Budget != nil {
		budget := *trip.Budget
		status := calculator.ClassifyBudget(sheet.TotalSpend, budget, e.cfg.BudgetWarningRatio)
		sheet.Budget = &budget
		sheet.BudgetStatus = &status
	}

	slog.Debug("Balances computed",
		"trip_id", trip.ID,
		"expenses", len(expenses),
		"splits", len(splits),
		"participants", len(balances),
	)
	return sheet, nil
}
