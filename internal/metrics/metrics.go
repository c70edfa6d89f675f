// Package metrics defines the Prometheus collectors of the trip ledger.
//
// Collectors are registered on a caller-supplied registry so tests and
// multiple servers in one process never collide on the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tripledger"

// Expense write operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Ledger holds the collectors updated by the ledger engine.
type Ledger struct {
	ExpenseWrites         *prometheus.CounterVec
	SplitRejections       *prometheus.CounterVec
	SettlementTransitions *prometheus.CounterVec
	BalanceCompute        prometheus.Histogram
}

// NewLedger creates the ledger collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewLedger(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		ExpenseWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expense_writes_total",
			Help:      "Committed expense writes by operation.",
		}, []string{"op"}),
		SplitRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_rejections_total",
			Help:      "Expense writes rejected before reaching storage, by reason.",
		}, []string{"reason"}),
		SettlementTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_transitions_total",
			Help:      "Split settlement changes by resulting state.",
		}, []string{"to"}),
		BalanceCompute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_compute_seconds",
			Help:      "Time to load a trip ledger and compute its balance sheet.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ExpenseWrites, m.SplitRejections, m.SettlementTransitions, m.BalanceCompute)
	}
	return m
}

// ExpenseWritten counts one committed write.
func (m *Ledger) ExpenseWritten(op string) {
	if m == nil {
		return
	}
	m.ExpenseWrites.WithLabelValues(op).Inc()
}

// Rejected counts one rejected write.
func (m *Ledger) Rejected(reason string) {
	if m == nil {
		return
	}
	m.SplitRejections.WithLabelValues(reason).Inc()
}

// SettlementChanged counts one settle or unsettle.
func (m *Ledger) SettlementChanged(settled bool) {
	if m == nil {
		return
	}
	to := "unsettled"
	if settled {
		to = "settled"
	}
	m.SettlementTransitions.WithLabelValues(to).Inc()
}

// ObserveBalanceCompute records the time since start.
func (m *Ledger) ObserveBalanceCompute(start time.Time) {
	if m == nil {
		return
	}
	m.BalanceCompute.Observe(time.Since(start).Seconds())
}

// RPC counts Connect requests by procedure and result code.
type RPC struct {
	Requests *prometheus.CounterVec
}

// NewRPC creates the RPC collectors and registers them on reg.
func NewRPC(reg prometheus.Registerer) *RPC {
	m := &RPC{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPC requests by procedure and code.",
		}, []string{"procedure", "code"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests)
	}
	return m
}
