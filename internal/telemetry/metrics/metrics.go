// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// OrdersSubmitted counts submissions by symbol and final status.
	OrdersSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fenrir",
		Name:      "orders_submitted_total",
		Help:      "Orders submitted, partitioned by symbol and final status.",
	}, []string{"symbol", "status"})

	// TradesExecuted counts trades produced by symbol.
	TradesExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fenrir",
		Name:      "trades_executed_total",
		Help:      "Trades executed, partitioned by symbol.",
	}, []string{"symbol"})

	// MatchLatency observes wall time spent inside a book's region per
	// submission, partitioned by symbol.
	MatchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fenrir",
		Name:      "match_latency_seconds",
		Help:      "Time spent matching a single submission inside the book region.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"symbol"})

	// BestBidAskSpread observes the spread at BBO-changing events,
	// partitioned by symbol.
	BestBidAskSpread = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fenrir",
		Name:      "best_bid_ask_spread",
		Help:      "Most recent best-ask minus best-bid, partitioned by symbol.",
	}, []string{"symbol"})
)

// Registry returns a fresh Prometheus registry with every engine metric
// registered, for mounting under a dedicated /metrics endpoint.
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(OrdersSubmitted, TradesExecuted, MatchLatency, BestBidAskSpread)
	return reg
}
