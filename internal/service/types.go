package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// Wire messages. Amounts are accepted as JSON numbers or strings and returned
// as strings with two decimals.

// ShareInput is one user's share, given as an amount or a percentage.
type ShareInput struct {
	UserID     string           `json:"user_id"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// SplitPlanInput requests an equal split or a list of shares.
type SplitPlanInput struct {
	Equal  bool         `json:"equal,omitempty"`
	Shares []ShareInput `json:"shares,omitempty"`
}

// CreateExpenseRequest records a new expense on a trip.
type CreateExpenseRequest struct {
	TripID      string          `json:"trip_id"`
	PayerID     string          `json:"payer_id,omitempty"`
	ActivityID  string          `json:"activity_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	ExpenseDate string          `json:"expense_date"`
	Splits      *SplitPlanInput `json:"splits,omitempty"`
}

// UpdateExpenseRequest carries only the fields to change.
type UpdateExpenseRequest struct {
	ExpenseID   string           `json:"expense_id"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	ExpenseDate *string          `json:"expense_date,omitempty"`
	ActivityID  *string          `json:"activity_id,omitempty"`
	Splits      *SplitPlanInput  `json:"splits,omitempty"`
}

// GetExpenseRequest selects one expense.
type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

// DeleteExpenseRequest selects the expense to remove.
type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

// DeleteExpenseResponse is empty.
type DeleteExpenseResponse struct{}

// ListExpensesRequest selects a trip.
type ListExpensesRequest struct {
	TripID string `json:"trip_id"`
}

// ListExpensesResponse holds a trip's expenses, newest first.
type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// ExpenseResponse wraps a single expense.
type ExpenseResponse struct {
	Expense Expense `json:"expense"`
}

// Expense is an expense with its splits.
type Expense struct {
	ID          string    `json:"id"`
	TripID      string    `json:"trip_id"`
	PayerID     string    `json:"payer_id"`
	ActivityID  string    `json:"activity_id,omitempty"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	ExpenseDate string    `json:"expense_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Splits      []Split   `json:"splits"`
}

// Split is one participant's share of an expense.
type Split struct {
	ID         string     `json:"id"`
	ExpenseID  string     `json:"expense_id"`
	UserID     string     `json:"user_id"`
	Amount     string     `json:"amount"`
	Percentage string     `json:"percentage,omitempty"`
	Settled    bool       `json:"settled"`
	SettledAt  *time.Time `json:"settled_at,omitempty"`
}

// MarkSplitRequest selects the split to settle or unsettle.
type MarkSplitRequest struct {
	SplitID string `json:"split_id"`
}

// SplitResponse wraps a single split.
type SplitResponse struct {
	Split Split `json:"split"`
}

// GetTripBalancesRequest selects a trip.
type GetTripBalancesRequest struct {
	TripID string `json:"trip_id"`
}

// GetTripBalancesResponse is a trip's balance sheet.
type GetTripBalancesResponse struct {
	TripID       string     `json:"trip_id"`
	Currency     string     `json:"currency"`
	Balances     []Balance  `json:"balances"`
	TotalSpend   string     `json:"total_spend"`
	Budget       string     `json:"budget,omitempty"`
	BudgetStatus string     `json:"budget_status,omitempty"`
	Transfers    []Transfer `json:"transfers"`
}

// Balance is one user's position on the trip.
type Balance struct {
	UserID              string `json:"user_id"`
	TotalPaid           string `json:"total_paid"`
	TotalOwed           string `json:"total_owed"`
	SettlementsPaid     string `json:"settlements_paid"`
	SettlementsReceived string `json:"settlements_received"`
	NetBalance          string `json:"net_balance"`
}

// Transfer is a suggested payment that settles debts.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func toPlan(in *SplitPlanInput) calculator.SplitPlan {
	if in == nil {
		return calculator.SplitPlan{}
	}
	plan := calculator.SplitPlan{Equal: in.Equal}
	for _, s := range in.Shares {
		plan.Shares = append(plan.Shares, calculator.ShareIntent{
			UserID:     s.UserID,
			Amount:     s.Amount,
			Percentage: s.Percentage,
		})
	}
	return plan
}

func toExpense(e *models.ExpenseWithSplits) Expense {
	out := Expense{
		ID:          e.Expense.ID,
		TripID:      e.Expense.TripID,
		PayerID:     e.Expense.PayerID,
		ActivityID:  e.Expense.ActivityID,
		Amount:      money.Format(e.Expense.Amount),
		Currency:    e.Expense.Currency,
		Category:    string(e.Expense.Category),
		Description: e.Expense.Description,
		ExpenseDate: e.Expense.ExpenseDate,
		CreatedAt:   e.Expense.CreatedAt,
		UpdatedAt:   e.Expense.UpdatedAt,
		Splits:      make([]Split, len(e.Splits)),
	}
	for i := range e.Splits {
		out.Splits[i] = toSplit(&e.Splits[i])
	}
	return out
}

func toSplit(s *models.ExpenseSplit) Split {
	out := Split{
		ID:        s.ID,
		ExpenseID: s.ExpenseID,
		UserID:    s.UserID,
		Amount:    money.Format(s.Amount),
		Settled:   s.Settled,
		SettledAt: s.SettledAt,
	}
	if s.Percentage != nil {
		out.Percentage = money.Format(*s.Percentage)
	}
	return out
}

func toBalances(sheet *models.BalanceSheet) *GetTripBalancesResponse {
	out := &GetTripBalancesResponse{
		TripID:     sheet.TripID,
		Currency:   sheet.Currency,
		TotalSpend: money.Format(sheet.TotalSpend),
		Balances:   make([]Balance, len(sheet.Participants)),
		Transfers:  make([]Transfer, len(sheet.Transfers)),
	}
	for i, b := range sheet.Participants {
		out.Balances[i] = Balance{
			UserID:              b.UserID,
			TotalPaid:           money.Format(b.TotalPaid),
			TotalOwed:           money.Format(b.TotalOwed),
			SettlementsPaid:     money.Format(b.SettlementsPaid),
			SettlementsReceived: money.Format(b.SettlementsReceived),
			NetBalance:          money.Format(b.NetBalance),
		}
	}
	for i, t := range sheet.Transfers {
		out.Transfers[i] = Transfer{From: t.From, To: t.To, Amount: money.Format(t.Amount)}
	}
	if sheet.Budget != nil {
		out.Budget = money.Format(*sheet.Budget)
	}
	if sheet.BudgetStatus != nil {
		out.BudgetStatus = string(*sheet.BudgetStatus)
	}
	return out
}
