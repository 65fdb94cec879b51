package database

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess = "success"
	resultFailure = "failure"

	outcomeReset  = "reset"
	outcomeAbsent = "absent"
)

// Metrics holds the prometheus collectors updated by this package.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	connectAttempts   *prometheus.CounterVec
	migrationsApplied prometheus.Counter
	resetTables       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dbkeep",
			Name:      "connect_attempts_total",
			Help:      "Database connection attempts by result.",
		}, []string{"result"}),
		migrationsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dbkeep",
			Name:      "migrations_applied_total",
			Help:      "Migrations applied by this process.",
		}),
		resetTables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dbkeep",
			Name:      "reset_tables_total",
			Help:      "Tables visited by drop or truncate, by outcome.",
		}, []string{"op", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(m.connectAttempts, m.migrationsApplied, m.resetTables)
	}

	return m
}

func (m *Metrics) connectAttempt(result string) {
	if m == nil {
		return
	}
	m.connectAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) migrationApplied() {
	if m == nil {
		return
	}
	m.migrationsApplied.Inc()
}

func (m *Metrics) resetTable(op, outcome string) {
	if m == nil {
		return
	}
	m.resetTables.WithLabelValues(op, outcome).Inc()
}
