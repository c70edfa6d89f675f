package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage/sqlstore"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	engine  *Engine
	store   *sqlstore.Store
	metrics *metrics.Ledger
	clock   *fakeClock
	trip    *models.Trip
}

// setupLedger creates an engine over a fresh SQLite store with one trip:
// alice owns it, bob and carol are accepted, dave is still pending.
func setupLedger(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	trip := &models.Trip{Name: "Lisbon", OwnerID: "alice", Currency: "EUR"}
	require.NoError(t, store.CreateTrip(ctx, trip))
	require.NoError(t, store.AddTripMember(ctx, trip.ID, "bob", models.MemberAccepted))
	require.NoError(t, store.AddTripMember(ctx, trip.ID, "carol", models.MemberAccepted))
	require.NoError(t, store.AddTripMember(ctx, trip.ID, "dave", models.MemberPending))

	clock := &fakeClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	m := metrics.NewLedger(prometheus.NewRegistry())

	return &fixture{
		engine:  New(store, m, DefaultConfig(), WithClock(clock.now)),
		store:   store,
		metrics: m,
		clock:   clock,
		trip:    trip,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strp(s string) *string {
	return &s
}

func share(userID, amount string) calculator.ShareIntent {
	return calculator.ShareIntent{UserID: userID, Amount: decp(amount)}
}

func pctShare(userID, pct string) calculator.ShareIntent {
	return calculator.ShareIntent{UserID: userID, Percentage: decp(pct)}
}

func shares(s ...calculator.ShareIntent) calculator.SplitPlan {
	return calculator.SplitPlan{Shares: s}
}

func (f *fixture) input(amount string, plan calculator.SplitPlan) CreateExpenseInput {
	return CreateExpenseInput{
		TripID:      f.trip.ID,
		Amount:      dec(amount),
		Category:    models.CategoryFood,
		Description: "Dinner",
		ExpenseDate: "2026-03-14",
		Splits:      plan,
	}
}

// create stores an expense paid by actorID and fails the test on error.
func (f *fixture) create(t *testing.T, actorID, amount string, plan calculator.SplitPlan) *models.ExpenseWithSplits {
	t.Helper()
	res, err := f.engine.CreateExpense(context.Background(), actorID, f.input(amount, plan))
	require.NoError(t, err)
	return res
}

// assertDec compares decimals by value.
func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
