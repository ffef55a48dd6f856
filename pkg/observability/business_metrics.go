package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ledger posting metrics
	ledgerLinesPostedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_lines_posted_total",
		Help: "Total number of commission ledger lines posted",
	}, []string{
		"role", // MANAGER, AGENT
	})

	ledgerGrossAmountUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_gross_amount_units_total",
		Help: "Total gross commission posted, in smallest currency units",
	}, []string{
		"role",
	})

	ledgerNetAmountUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_net_amount_units_total",
		Help: "Total net commission posted, in smallest currency units",
	}, []string{
		"role",
	})

	// Adjustment workflow metrics
	adjustmentDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adjustment_decisions_total",
		Help: "Total adjustment decisions by terminal status",
	}, []string{
		"status", // APPROVED, REJECTED
	})

	// Settlement batch metrics
	settlementRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_runs_total",
		Help: "Total settlement batch runs",
	}, []string{
		"period",
		"result", // complete, partial
	})

	settlementProfilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_profiles_total",
		Help: "Profiles processed per settlement run, by outcome",
	}, []string{
		"outcome", // succeeded, failed
	})

	// Rate lookup metrics
	rateLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_lookups_total",
		Help: "Total external rate table lookups",
	}, []string{
		"kind",    // commission, withholding
		"outcome", // found, not_found, timeout, error, cache_hit
	})
)

// RecordLedgerLinePosted records one posted ledger line
func RecordLedgerLinePosted(role string, grossAmount, netAmount int64) {
	ledgerLinesPostedTotal.WithLabelValues(role).Inc()
	if grossAmount > 0 {
		ledgerGrossAmountUnits.WithLabelValues(role).Add(float64(grossAmount))
	}
	if netAmount > 0 {
		ledgerNetAmountUnits.WithLabelValues(role).Add(float64(netAmount))
	}
}

// RecordAdjustmentDecision records a terminal adjustment decision
func RecordAdjustmentDecision(status string) {
	adjustmentDecisionsTotal.WithLabelValues(status).Inc()
}

// RecordSettlementRun records the outcome of one settlement batch
func RecordSettlementRun(period string, succeeded, failed int) {
	result := "complete"
	if failed > 0 {
		result = "partial"
	}
	settlementRunsTotal.WithLabelValues(period, result).Inc()
	settlementProfilesTotal.WithLabelValues("succeeded").Add(float64(succeeded))
	settlementProfilesTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordRateLookup records one external rate lookup outcome
func RecordRateLookup(kind, outcome string) {
	rateLookupsTotal.WithLabelValues(kind, outcome).Inc()
}
