package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(searchJobsTotal, searchJobsInFlight) }

var searchJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "search_jobs_total",
		Help: "Total number of search jobs reaching a terminal state, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var searchJobsInFlight = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "search_jobs_in_flight",
		Help: "Number of search jobs currently running a probe process.",
	},
)

func IncJob(status string) {
	searchJobsTotal.WithLabelValues(norm(status)).Inc()
}

func JobStarted()  { searchJobsInFlight.Inc() }
func JobFinished() { searchJobsInFlight.Dec() }
