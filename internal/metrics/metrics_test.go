package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedger(reg)

	m.ExpenseWritten(OpCreate)
	m.ExpenseWritten(OpCreate)
	m.ExpenseWritten(OpDelete)
	m.Rejected("split_sum")
	m.SettlementChanged(true)
	m.SettlementChanged(false)
	m.SettlementChanged(true)
	m.ObserveBalanceCompute(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExpenseWrites.WithLabelValues(OpCreate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpenseWrites.WithLabelValues(OpDelete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SplitRejections.WithLabelValues("split_sum")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SettlementTransitions.WithLabelValues("settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementTransitions.WithLabelValues("unsettled")))

	count, err := testutil.GatherAndCount(reg, "tripledger_balance_compute_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilLedgerIsNoop(t *testing.T) {
	var m *Ledger
	assert.NotPanics(t, func() {
		m.ExpenseWritten(OpUpdate)
		m.Rejected("validation")
		m.SettlementChanged(true)
		m.ObserveBalanceCompute(time.Now())
	})
}

func TestRegistriesAreIndependent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLedger(prometheus.NewRegistry())
		NewLedger(prometheus.NewRegistry())
		NewRPC(prometheus.NewRegistry())
		NewRPC(nil)
	})
}
