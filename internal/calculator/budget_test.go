package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/tripledger/internal/models"
)

func TestClassifyBudget(t *testing.T) {
	tests := []struct {
		spend, budget string
		want          models.BudgetStatus
	}{
		{"0", "1000", models.BudgetOK},
		{"799.99", "1000", models.BudgetOK},
		{"800", "1000", models.BudgetWarning},
		{"999.99", "1000", models.BudgetWarning},
		{"1000", "1000", models.BudgetExceeded},
		{"1500", "1000", models.BudgetExceeded},
		{"0", "0", models.BudgetOK},
		{"1", "0", models.BudgetExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.spend+"/"+tt.budget, func(t *testing.T) {
			got := ClassifyBudget(dec(tt.spend), dec(tt.budget), DefaultBudgetWarningRatio)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyBudget_CustomRatio(t *testing.T) {
	assert.Equal(t, models.BudgetOK, ClassifyBudget(dec("850"), dec("1000"), dec("0.9")))
	assert.Equal(t, models.BudgetWarning, ClassifyBudget(dec("900"), dec("1000"), dec("0.9")))
}
