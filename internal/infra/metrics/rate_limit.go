package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(submissionsDenied) }

var submissionsDenied = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "submissions_rate_limited_total",
		Help: "Submissions rejected because the owner cooldown had not elapsed.",
	},
)

func IncRateLimited() { submissionsDenied.Inc() }
