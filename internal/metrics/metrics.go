package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts ledger transactions partitioned by type.
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcore",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Total ledger transactions created, partitioned by type.",
		},
		[]string{"type"},
	)

	// GateConflictsTotal counts resolve attempts that lost the status
	// compare-and-swap, partitioned by workflow.
	GateConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcore",
			Subsystem: "approval_gate",
			Name:      "conflicts_total",
			Help:      "Resolve attempts rejected because the record already left the expected state.",
		},
		[]string{"workflow"},
	)

	// AuditMismatches reports accounts whose stored balance diverged from the
	// transaction sum in the most recent audit sweep.
	AuditMismatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "walletcore",
			Subsystem: "audit",
			Name:      "balance_mismatches",
			Help:      "Accounts with balance != sum(transactions) in the last sweep.",
		},
	)

	// AuditLastRunUnix is the unix time of the most recent completed sweep.
	AuditLastRunUnix = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "walletcore",
			Subsystem: "audit",
			Name:      "last_run_unix",
			Help:      "Unix time of the most recent completed audit sweep.",
		},
	)
)
