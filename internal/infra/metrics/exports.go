package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(exportsTotal) }

var exportsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "result_exports_total",
		Help: "Total export renders, labeled by format and outcome.",
	},
	[]string{"format", "outcome"}, // outcome: 'ok', 'error', 'unsupported'
)

func IncExport(format, outcome string) {
	exportsTotal.WithLabelValues(norm(format), norm(outcome)).Inc()
}
