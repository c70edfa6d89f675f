package calculator

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// balanceAcc accumulates one participant's position at full precision.
type balanceAcc struct {
	paid, owed, settlementsPaid, settlementsReceived decimal.Decimal
}

// NetBalances computes every participant's position across a trip.
//
// Algorithm:
//   - non-settlement expense: payer's TotalPaid += amount, each split user's TotalOwed += split
//   - settlement expense: payer's SettlementsPaid += amount, each split user's
//     SettlementsReceived += split
//   - NetBalance = TotalPaid - TotalOwed + SettlementsPaid - SettlementsReceived
//
// Settled flags do not change TotalOwed. Accumulation is unrounded; each output
// field is rounded to cents once. Participants come first in the given order,
// followed by any other user who appears in the ledger, sorted by ID.
func NetBalances(participants []string, expenses []*models.Expense, splits []models.ExpenseSplit) []models.Balance {
	accs := make(map[string]*balanceAcc)
	order := make([]string, 0, len(participants))

	get := func(userID string) *balanceAcc {
		if acc, ok := accs[userID]; ok {
			return acc
		}
		acc := &balanceAcc{}
		accs[userID] = acc
		return acc
	}
	for _, p := range participants {
		if _, ok := accs[p]; ok {
			continue
		}
		get(p)
		order = append(order, p)
	}

	byID := make(map[string]*models.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
		acc := get(e.PayerID)
		if e.IsSettlement() {
			acc.settlementsPaid = acc.settlementsPaid.Add(e.Amount)
		} else {
			acc.paid = acc.paid.Add(e.Amount)
		}
	}

	for _, s := range splits {
		e, ok := byID[s.ExpenseID]
		if !ok {
			continue
		}
		acc := get(s.UserID)
		if e.IsSettlement() {
			acc.settlementsReceived = acc.settlementsReceived.Add(s.Amount)
		} else {
			acc.owed = acc.owed.Add(s.Amount)
		}
	}

	var extra []string
	for userID := range accs {
		if !slices.Contains(order, userID) {
			extra = append(extra, userID)
		}
	}
	slices.Sort(extra)
	order = append(order, extra...)

	out := make([]models.Balance, len(order))
	for i, userID := range order {
		acc := accs[userID]
		net := acc.paid.Sub(acc.owed).Add(acc.settlementsPaid).Sub(acc.settlementsReceived)
		out[i] = models.Balance{
			UserID:              userID,
			TotalPaid:           money.RoundToCents(acc.paid),
			TotalOwed:           money.RoundToCents(acc.owed),
			SettlementsPaid:     money.RoundToCents(acc.settlementsPaid),
			SettlementsReceived: money.RoundToCents(acc.settlementsReceived),
			NetBalance:          money.RoundToCents(net),
		}
	}
	return out
}

// TotalSpend sums the non-settlement expenses.
func TotalSpend(expenses []*models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if !e.IsSettlement() {
			total = total.Add(e.Amount)
		}
	}
	return money.RoundToCents(total)
}

// SuggestTransfers matches debtors with creditors to clear the balances in as
// few payments as the greedy pairing finds. Largest debts are matched with
// largest credits first; ties break on user ID so the output is stable.
func SuggestTransfers(balances []models.Balance) []models.Transfer {
	type party struct {
		userID    string
		remaining decimal.Decimal
	}

	var creditors, debtors []party
	for _, b := range balances {
		switch {
		case b.NetBalance.IsPositive():
			creditors = append(creditors, party{b.UserID, b.NetBalance})
		case b.NetBalance.IsNegative():
			debtors = append(debtors, party{b.UserID, b.NetBalance.Neg()})
		}
	}

	byLargest := func(a, b party) int {
		if c := b.remaining.Cmp(a.remaining); c != 0 {
			return c
		}
		return strings.Compare(a.userID, b.userID)
	}
	slices.SortFunc(creditors, byLargest)
	slices.SortFunc(debtors, byLargest)

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]

		amount := decimal.Min(d.remaining, c.remaining)
		if amount.IsPositive() {
			transfers = append(transfers, models.Transfer{From: d.userID, To: c.userID, Amount: amount})
		}

		d.remaining = d.remaining.Sub(amount)
		c.remaining = c.remaining.Sub(amount)

		if !d.remaining.IsPositive() {
			i++
		}
		if !c.remaining.IsPositive() {
			j++
		}
	}

	return transfers
}
