package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels shared by the transfer counters.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomePending   = "pending"
	OutcomeCancelled = "cancelled"
)

// TransferMetrics counts exports, imports and integrity repairs.
type TransferMetrics struct {
	exports  *prometheus.CounterVec
	imports  *prometheus.CounterVec
	applied  prometheus.Counter
	repaired prometheus.Counter
}

// NewTransferMetrics registers the transfer collectors. A nil registerer
// yields a no-op recorder.
func NewTransferMetrics(reg prometheus.Registerer) *TransferMetrics {
	if reg == nil {
		return &TransferMetrics{}
	}
	m := &TransferMetrics{
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Contact exports by format and outcome.",
		}, []string{"format", "outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Contact imports by format and outcome.",
		}, []string{"format", "outcome"}),
		applied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_contacts_total",
			Help:      "Contacts written by imports.",
		}),
		repaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_repaired_contacts_total",
			Help:      "Contacts altered by the integrity sweep.",
		}),
	}
	reg.MustRegister(m.exports, m.imports, m.applied, m.repaired)
	return m
}

func (m *TransferMetrics) Export(format, outcome string) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(normalizeLabel(format), normalizeLabel(outcome)).Inc()
}

func (m *TransferMetrics) Import(format, outcome string) {
	if m == nil || m.imports == nil {
		return
	}
	m.imports.WithLabelValues(normalizeLabel(format), normalizeLabel(outcome)).Inc()
}

func (m *TransferMetrics) ContactsApplied(n int) {
	if m == nil || m.applied == nil || n <= 0 {
		return
	}
	m.applied.Add(float64(n))
}

func (m *TransferMetrics) ContactsRepaired(n int) {
	if m == nil || m.repaired == nil || n <= 0 {
		return
	}
	m.repaired.Add(float64(n))
}
