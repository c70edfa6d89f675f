package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripledger/internal/apperr"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/models"
)

func TestCreateExpenseEqualSplit(t *testing.T) {
	f := setupLedger(t)

	res := f.create(t, "alice", "90", calculator.SplitPlan{Equal: true})

	assert.Equal(t, "alice", res.Expense.PayerID)
	assert.Equal(t, "EUR", res.Expense.Currency)
	require.Len(t, res.Splits, 3)
	for i, userID := range []string{"alice", "bob", "carol"} {
		assert.Equal(t, userID, res.Splits[i].UserID)
		assertDec(t, "30", res.Splits[i].Amount)
		require.NotNil(t, res.Splits[i].Percentage)
		assertDec(t, "33.33", *res.Splits[i].Percentage)
		assert.False(t, res.Splits[i].Settled)
		assert.NotEmpty(t, res.Splits[i].ID)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExpenseWrites.WithLabelValues(metrics.OpCreate)))
}

func TestCreateExpenseEqualSplitKeepsResidue(t *testing.T) {
	f := setupLedger(t)

	res := f.create(t, "alice", "100", calculator.SplitPlan{Equal: true})

	require.Len(t, res.Splits, 3)
	total := res.Splits[0].Amount.Add(res.Splits[1].Amount).Add(res.Splits[2].Amount)
	assertDec(t, "99.99", total)
}

// addMembers accepts more collaborators onto the fixture trip.
func (f *fixture) addMembers(t *testing.T, userIDs ...string) {
	t.Helper()
	for _, userID := range userIDs {
		require.NoError(t, f.store.AddTripMember(context.Background(), f.trip.ID, userID, models.MemberAccepted))
	}
}

func TestCreateExpenseEqualSplitLargeGroup(t *testing.T) {
	tests := []struct {
		name  string
		extra []string
		share string
		sum   string
	}{
		{"six members", []string{"erin", "frank", "gina"}, "16.67", "100.02"},
		{"seven members", []string{"erin", "frank", "gina", "hank"}, "14.29", "100.03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupLedger(t)
			f.addMembers(t, tt.extra...)

			res := f.create(t, "alice", "100", calculator.SplitPlan{Equal: true})

			require.Len(t, res.Splits, 3+len(tt.extra))
			total := decimal.Zero
			for _, s := range res.Splits {
				assertDec(t, tt.share, s.Amount)
				total = total.Add(s.Amount)
			}
			assertDec(t, tt.sum, total)
		})
	}
}

func TestUpdateExpenseKeepsEqualSplitOfNewAmount(t *testing.T) {
	f := setupLedger(t)
	f.addMembers(t, "erin", "frank", "gina")
	ctx := context.Background()

	created := f.create(t, "alice", "100", calculator.SplitPlan{Equal: true})

	// 99.99 still splits six ways into 16.67 each.
	res, err := f.engine.UpdateExpense(ctx, "alice", created.Expense.ID, UpdateExpenseInput{Amount: decp("99.99")})
	require.NoError(t, err)
	assertDec(t, "99.99", res.Expense.Amount)
	require.Len(t, res.Splits, 6)

	_, err = f.engine.UpdateExpense(ctx, "alice", created.Expense.ID, UpdateExpenseInput{Amount: decp("120")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "do not match expense amount 120.00")
}

func TestCreateExpenseExplicitAndPercentageSplits(t *testing.T) {
	f := setupLedger(t)

	res := f.create(t, "bob", "80", shares(share("alice", "20"), pctShare("bob", "25"), pctShare("carol", "50")))

	require.Len(t, res.Splits, 3)
	assertDec(t, "20", res.Splits[0].Amount)
	assert.Nil(t, res.Splits[0].Percentage)
	assertDec(t, "20", res.Splits[1].Amount)
	assertDec(t, "40", res.Splits[2].Amount)
	require.NotNil(t, res.Splits[2].Percentage)
	assertDec(t, "50", *res.Splits[2].Percentage)

	got, err := f.engine.GetExpense(context.Background(), "carol", res.Expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Expense.PayerID)
	require.Len(t, got.Splits, 3)
	assert.Equal(t, res.Splits[1].ID, got.Splits[1].ID)
}

func TestCreateExpenseWithoutSplits(t *testing.T) {
	f := setupLedger(t)

	res := f.create(t, "alice", "12.5", calculator.SplitPlan{})
	assert.Empty(t, res.Splits)
	assertDec(t, "12.50", res.Expense.Amount)
}

func TestCreateExpenseDefaultsAndOverrides(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	in := f.input("45.678", shares(share("carol", "45.68")))
	in.PayerID = "carol"
	in.Currency = "USD"
	in.ActivityID = "act-1"

	res, err := f.engine.CreateExpense(ctx, "alice", in)
	require.NoError(t, err)
	assert.Equal(t, "carol", res.Expense.PayerID)
	assert.Equal(t, "USD", res.Expense.Currency)
	assert.Equal(t, "act-1", res.Expense.ActivityID)
	assertDec(t, "45.68", res.Expense.Amount)
}

func TestCreateExpenseValidation(t *testing.T) {
	long := strings.Repeat("x", 501)

	tests := []struct {
		name    string
		mutate  func(in *CreateExpenseInput)
		wantMsg string
	}{
		{
			name:    "zero amount",
			mutate:  func(in *CreateExpenseInput) { in.Amount = dec("0") },
			wantMsg: "amount must be greater than 0",
		},
		{
			name:    "negative amount",
			mutate:  func(in *CreateExpenseInput) { in.Amount = dec("-5") },
			wantMsg: "amount must be greater than 0",
		},
		{
			name:    "amount rounds to zero",
			mutate:  func(in *CreateExpenseInput) { in.Amount = dec("0.004") },
			wantMsg: "amount must be greater than 0",
		},
		{
			name:    "unknown category",
			mutate:  func(in *CreateExpenseInput) { in.Category = "fun" },
			wantMsg: "category must be one of",
		},
		{
			name:    "missing category",
			mutate:  func(in *CreateExpenseInput) { in.Category = "" },
			wantMsg: "category is required",
		},
		{
			name:    "missing date",
			mutate:  func(in *CreateExpenseInput) { in.ExpenseDate = "" },
			wantMsg: "expense_date is required",
		},
		{
			name:    "malformed date",
			mutate:  func(in *CreateExpenseInput) { in.ExpenseDate = "14/03/2026" },
			wantMsg: "expense_date must be a calendar date",
		},
		{
			name:    "impossible date",
			mutate:  func(in *CreateExpenseInput) { in.ExpenseDate = "2026-02-30" },
			wantMsg: "expense_date must be a calendar date",
		},
		{
			name:    "long description",
			mutate:  func(in *CreateExpenseInput) { in.Description = long },
			wantMsg: "description must be at most 500 characters",
		},
		{
			name:    "bad currency",
			mutate:  func(in *CreateExpenseInput) { in.Currency = "EURO" },
			wantMsg: "currency must be an ISO 4217 currency code",
		},
		{
			name:    "inactive payer",
			mutate:  func(in *CreateExpenseInput) { in.PayerID = "dave" },
			wantMsg: "payer dave is not an active participant",
		},
		{
			name:    "split sum mismatch",
			mutate:  func(in *CreateExpenseInput) { in.Splits = shares(share("alice", "40"), share("bob", "40")) },
			wantMsg: "split amounts 40.00 + 40.00 = 80.00 do not match expense amount 100.00",
		},
		{
			name:    "pending recipient",
			mutate:  func(in *CreateExpenseInput) { in.Splits = shares(share("alice", "50"), share("dave", "50")) },
			wantMsg: "user dave is not an active participant",
		},
		{
			name:    "percentage out of range",
			mutate:  func(in *CreateExpenseInput) { in.Splits = shares(pctShare("alice", "120")) },
			wantMsg: "must be between 0 and 100",
		},
		{
			name:    "zero share",
			mutate:  func(in *CreateExpenseInput) { in.Splits = shares(share("alice", "100"), share("bob", "0")) },
			wantMsg: "must be greater than 0",
		},
	}

	f := setupLedger(t)
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input("100", shares(share("alice", "50"), share("bob", "50")))
			tt.mutate(&in)

			_, err := f.engine.CreateExpense(ctx, "alice", in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	list, err := f.engine.ListExpenses(ctx, "alice", f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected input must not be stored")
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.ExpenseWrites.WithLabelValues(metrics.OpCreate)))
}

func TestCreateExpenseToleranceBoundary(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	_, err := f.engine.CreateExpense(ctx, "alice", f.input("100", shares(share("alice", "50"), share("bob", "49.99"))))
	require.NoError(t, err)

	_, err = f.engine.CreateExpense(ctx, "alice", f.input("100", shares(share("alice", "50"), share("bob", "49.98"))))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateExpenseAccessErrors(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	_, err := f.engine.CreateExpense(ctx, "dave", f.input("10", calculator.SplitPlan{}))
	assert.True(t, errors.Is(err, apperr.ErrAuthorization), "pending collaborator: %v", err)

	_, err = f.engine.CreateExpense(ctx, "", f.input("10", calculator.SplitPlan{}))
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))

	in := f.input("10", calculator.SplitPlan{})
	in.TripID = "missing"
	_, err = f.engine.CreateExpense(ctx, "alice", in)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	in.TripID = ""
	_, err = f.engine.CreateExpense(ctx, "alice", in)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateSettlementExpense(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	settlement := func(plan calculator.SplitPlan) CreateExpenseInput {
		in := f.input("50", plan)
		in.Category = models.CategorySettlement
		return in
	}

	tests := []struct {
		name    string
		plan    calculator.SplitPlan
		wantMsg string
	}{
		{"no recipients", calculator.SplitPlan{}, "at least one recipient"},
		{"equal split", calculator.SplitPlan{Equal: true}, "must name their recipients"},
		{"payer as recipient", shares(share("alice", "25"), share("bob", "25")), "cannot be a recipient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateExpense(ctx, "bob", func() CreateExpenseInput {
				in := settlement(tt.plan)
				in.PayerID = "alice"
				return in
			}())
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	res, err := f.engine.CreateExpense(ctx, "bob", settlement(shares(share("alice", "50"))))
	require.NoError(t, err)
	assert.True(t, res.Expense.IsSettlement())
	require.Len(t, res.Splits, 1)
	assert.Equal(t, "alice", res.Splits[0].UserID)
}

func TestUpdateExpenseFields(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	created := f.create(t, "bob", "100", shares(share("alice", "50"), share("bob", "50")))

	category := models.CategoryActivities
	res, err := f.engine.UpdateExpense(ctx, "bob", created.Expense.ID, UpdateExpenseInput{
		Description: strp("Surf lesson"),
		Category:    &category,
		ExpenseDate: strp("2026-03-15"),
		Currency:    strp("USD"),
		ActivityID:  strp("act-9"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Surf lesson", res.Expense.Description)
	assert.Equal(t, models.CategoryActivities, res.Expense.Category)
	assert.Equal(t, "2026-03-15", res.Expense.ExpenseDate)
	assert.Equal(t, "USD", res.Expense.Currency)
	assert.Equal(t, "act-9", res.Expense.ActivityID)
	require.Len(t, res.Splits, 2)
	assert.Equal(t, created.Splits[0].ID, res.Splits[0].ID, "splits are kept when not supplied")

	got, err := f.engine.GetExpense(ctx, "alice", created.Expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "Surf lesson", got.Expense.Description)
	assertDec(t, "100", got.Expense.Amount)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExpenseWrites.WithLabelValues(metrics.OpUpdate)))
}

func TestUpdateExpenseReplacesSplits(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	created := f.create(t, "alice", "100", shares(share("alice", "50"), share("bob", "50")))
	plan := shares(share("bob", "30"), share("carol", "90"))

	first, err := f.engine.UpdateExpense(ctx, "alice", created.Expense.ID, UpdateExpenseInput{
		Amount: decp("120"),
		Splits: &plan,
	})
	require.NoError(t, err)
	assertDec(t, "120", first.Expense.Amount)
	require.Len(t, first.Splits, 2)
	assert.Equal(t, "bob", first.Splits[0].UserID)
	assert.Equal(t, "carol", first.Splits[1].UserID)

	second, err := f.engine.ReplaceSplits(ctx, "alice", created.Expense.ID, plan)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for i := range second {
		assert.Equal(t, first.Splits[i].UserID, second[i].UserID)
		assert.True(t, first.Splits[i].Amount.Equal(second[i].Amount))
		assert.NotEqual(t, first.Splits[i].ID, second[i].ID)
	}

	_, err = f.store.GetSplit(ctx, created.Splits[0].ID)
	assert.Error(t, err, "old splits are gone after a replace")
}

func TestUpdateExpenseRevalidatesKeptSplits(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	created := f.create(t, "alice", "100", shares(share("alice", "50"), share("bob", "50")))

	_, err := f.engine.UpdateExpense(ctx, "alice", created.Expense.ID, UpdateExpenseInput{Amount: decp("120")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Contains(t, err.Error(), "50.00 + 50.00 = 100.00 do not match expense amount 120.00")

	got, err := f.engine.GetExpense(ctx, "alice", created.Expense.ID)
	require.NoError(t, err)
	assertDec(t, "100", got.Expense.Amount)

	noSplits := f.create(t, "alice", "10", calculator.SplitPlan{})
	res, err := f.engine.UpdateExpense(ctx, "alice", noSplits.Expense.ID, UpdateExpenseInput{Amount: decp("25")})
	require.NoError(t, err)
	assertDec(t, "25", res.Expense.Amount)
}

func TestUpdateExpenseRejectsInvalidPlan(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	created := f.create(t, "alice", "100", shares(share("alice", "50"), share("bob", "50")))
	plan := shares(share("alice", "40"), share("bob", "40"))

	_, err := f.engine.UpdateExpense(ctx, "alice", created.Expense.ID, UpdateExpenseInput{Splits: &plan})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	got, err := f.engine.GetExpense(ctx, "alice", created.Expense.ID)
	require.NoError(t, err)
	require.Len(t, got.Splits, 2)
	assert.Equal(t, created.Splits[0].ID, got.Splits[0].ID)
}

func TestUpdateExpenseToSettlementChecksKeptSplits(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	created := f.create(t, "alice", "100", shares(share("alice", "50"), share("bob", "50")))
	category := models.CategorySettlement

	_, err := f.engine.UpdateExpense(ctx, "alice", created.Expense.ID, UpdateExpenseInput{Category: &category})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be a recipient")

	plan := shares(share("bob", "100"))
	res, err := f.engine.UpdateExpense(ctx, "alice", created.Expense.ID, UpdateExpenseInput{Category: &category, Splits: &plan})
	require.NoError(t, err)
	assert.True(t, res.Expense.IsSettlement())
}

func TestUpdateExpenseAuthorization(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	byBob := f.create(t, "bob", "60", shares(share("bob", "30"), share("carol", "30")))

	_, err := f.engine.UpdateExpense(ctx, "carol", byBob.Expense.ID, UpdateExpenseInput{Description: strp("mine now")})
	assert.True(t, errors.Is(err, apperr.ErrAuthorization), "split participant is not an editor")

	// The trip owner may edit any expense.
	_, err = f.engine.UpdateExpense(ctx, "alice", byBob.Expense.ID, UpdateExpenseInput{Description: strp("fixed")})
	require.NoError(t, err)

	_, err = f.engine.UpdateExpense(ctx, "alice", "missing", UpdateExpenseInput{Description: strp("x")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	bad := models.Category("fun")
	_, err = f.engine.UpdateExpense(ctx, "bob", byBob.Expense.ID, UpdateExpenseInput{Category: &bad})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.engine.UpdateExpense(ctx, "bob", byBob.Expense.ID, UpdateExpenseInput{Amount: decp("0")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDeleteExpense(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	created := f.create(t, "bob", "60", shares(share("bob", "30"), share("carol", "30")))

	err := f.engine.DeleteExpense(ctx, "carol", created.Expense.ID)
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))

	require.NoError(t, f.engine.DeleteExpense(ctx, "bob", created.Expense.ID))

	_, err = f.engine.GetExpense(ctx, "bob", created.Expense.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = f.engine.MarkSettled(ctx, "carol", created.Splits[1].ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "splits are deleted with their expense")

	err = f.engine.DeleteExpense(ctx, "bob", created.Expense.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExpenseWrites.WithLabelValues(metrics.OpDelete)))
}

func TestListExpenses(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	early := f.input("30", shares(share("alice", "30")))
	early.ExpenseDate = "2026-03-01"
	_, err := f.engine.CreateExpense(ctx, "alice", early)
	require.NoError(t, err)
	late := f.create(t, "bob", "40", shares(share("bob", "20"), share("carol", "20")))

	list, err := f.engine.ListExpenses(ctx, "carol", f.trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, late.Expense.ID, list[0].Expense.ID)
	assert.Len(t, list[0].Splits, 2)
	assert.Len(t, list[1].Splits, 1)

	_, err = f.engine.ListExpenses(ctx, "dave", f.trip.ID)
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))

	_, err = f.engine.ListExpenses(ctx, "alice", "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestStoreFailureIsPersistenceError(t *testing.T) {
	f := setupLedger(t)
	require.NoError(t, f.store.Close())

	_, err := f.engine.CreateExpense(context.Background(), "alice", f.input("10", calculator.SplitPlan{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrPersistence))
	assert.Equal(t, "persistence failure", err.Error())
}
