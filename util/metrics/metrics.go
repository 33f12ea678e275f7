package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterPrometheusMetrics register all prometheus metrics with the global
// metrics handler.
func RegisterPrometheusMetrics() {
	prometheus.Register(GroupBuildTimeSeconds)
	prometheus.Register(GroupsBuilt)
	prometheus.Register(GroupsSigned)
	prometheus.Register(GroupsSubmitted)
	prometheus.Register(GroupsFailed)
	prometheus.Register(TxnsPerGroup)
}

// Prometheus metric names broken out for reuse.
const (
	GroupBuildTimeName  = "average_group_build_time_sec"
	GroupsBuiltName     = "cumulative_groups_built"
	GroupsSignedName    = "cumulative_groups_signed"
	GroupsSubmittedName = "cumulative_groups_submitted"
	GroupsFailedName    = "cumulative_groups_failed"
	TxnsPerGroupName    = "average_txns_per_group"
)

// Initialize the prometheus objects.
var (
	// AllMetricNames is a reference for all the custom metric names.
	AllMetricNames = []string{
		GroupBuildTimeName,
		GroupsBuiltName,
		GroupsSignedName,
		GroupsSubmittedName,
		GroupsFailedName,
		TxnsPerGroupName}

	GroupBuildTimeSeconds = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Subsystem: "algokit_composer",
			Name:      GroupBuildTimeName,
			Help:      "Time spent building a transaction group in seconds.",
		})

	GroupsBuilt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "algokit_composer",
			Name:      GroupsBuiltName,
			Help:      "Cumulative transaction groups built.",
		})

	GroupsSigned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "algokit_composer",
			Name:      GroupsSignedName,
			Help:      "Cumulative transaction groups signed.",
		})

	GroupsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "algokit_composer",
			Name:      GroupsSubmittedName,
			Help:      "Cumulative transaction groups submitted to the network.",
		})

	GroupsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "algokit_composer",
			Name:      GroupsFailedName,
			Help:      "Cumulative transaction group submissions that failed.",
		})

	TxnsPerGroup = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Subsystem: "algokit_composer",
			Name:      TxnsPerGroupName,
			Help:      "Transactions per built group.",
		})
)
