package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/models"
)

// DefaultBudgetWarningRatio is the share of the budget at which spend is flagged.
var DefaultBudgetWarningRatio = decimal.RequireFromString("0.8")

// ClassifyBudget compares spend with budget: exceeded at or above 100%,
// warning at or above warnRatio, ok below. A non-positive budget is exceeded
// by any spend.
func ClassifyBudget(spend, budget, warnRatio decimal.Decimal) models.BudgetStatus {
	if !budget.IsPositive() {
		if spend.IsPositive() {
			return models.BudgetExceeded
		}
		return models.BudgetOK
	}

	switch {
	case spend.GreaterThanOrEqual(budget):
		return models.BudgetExceeded
	case spend.GreaterThanOrEqual(budget.Mul(warnRatio)):
		return models.BudgetWarning
	default:
		return models.BudgetOK
	}
}
