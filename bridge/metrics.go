package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/swapr/bridge-tracker/store"
)

var (
	LoopDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bridge_tracker",
		Subsystem: "bridge",
		Name:      "loop_duration_seconds",
		Help:      "Duration of a single reconciliation pass.",
		Buckets:   []float64{0.1, 0.2, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"loop"})

	OperationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bridge_tracker",
		Subsystem: "bridge",
		Name:      "operation_results_total",
		Help:      "Results of user initiated bridge operations.",
	}, []string{"operation", "result"})

	TrackedTxns = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "bridge_tracker",
		Subsystem: "bridge",
		Name:      "tracked_txns",
		Help:      "Shows the number of tracked bridge transactions by chain, type and status.",
	}, []string{"chain_id", "type", "status"})
)

func ObserveLoopDuration(loop string) func() time.Duration {
	return prometheus.NewTimer(LoopDurations.WithLabelValues(loop)).ObserveDuration
}

// RecordTrackedTxns refreshes the tracked transactions gauge from the given state.
func RecordTrackedTxns(state *store.State) {
	TrackedTxns.Reset()
	for _, txn := range state.AllTxs() {
		TrackedTxns.WithLabelValues(txn.ChainID.String(), string(txn.Type), string(txn.Status)).Inc()
	}
}
