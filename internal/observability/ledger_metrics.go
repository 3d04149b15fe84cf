package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics mengumpulkan metrik mutasi jurnal dan sinkronisasi ledger.
type LedgerMetrics struct {
	mutations     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	syncFailures  prometheus.Counter
	syncAlerts    prometheus.Counter
	driftAccounts prometheus.Gauge
}

// NewLedgerMetrics mendaftarkan metrik ledger pada registerer. Registerer nil
// memakai registerer default Prometheus.
func NewLedgerMetrics(registerer prometheus.Registerer) *LedgerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &LedgerMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_gl_journal_mutations_total",
			Help: "Journal store mutations by action and outcome.",
		}, []string{"action", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_gl_gate_violations_total",
			Help: "Validation gate violations by gate number.",
		}, []string{"gate"}),
		syncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odyssey_gl_ledger_sync_failures_total",
			Help: "Failed legacy ledger projection writes.",
		}),
		syncAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "odyssey_gl_ledger_sync_alerts_total",
			Help: "Times the consecutive sync failure threshold was reached.",
		}),
		driftAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "odyssey_gl_ledger_drift_accounts",
			Help: "Accounts whose projection totals differ from posted journal lines.",
		}),
	}
	registerer.MustRegister(m.mutations, m.rejections, m.syncFailures, m.syncAlerts, m.driftAccounts)
	return m
}

// ObserveMutation records one journal store call.
func (m *LedgerMetrics) ObserveMutation(action string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.mutations.WithLabelValues(action, outcome).Inc()
}

// ObserveViolations counts rejected gates.
func (m *LedgerMetrics) ObserveViolations(gates []int) {
	if m == nil {
		return
	}
	for _, g := range gates {
		m.rejections.WithLabelValues(strconv.Itoa(g)).Inc()
	}
}

// ObserveSyncFailure counts a projection failure and whether it raised an alert.
func (m *LedgerMetrics) ObserveSyncFailure(alert bool) {
	if m == nil {
		return
	}
	m.syncFailures.Inc()
	if alert {
		m.syncAlerts.Inc()
	}
}

// SetDriftAccounts publishes the latest drift count.
func (m *LedgerMetrics) SetDriftAccounts(n int) {
	if m == nil {
		return
	}
	m.driftAccounts.Set(float64(n))
}
