package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(probeDurationSeconds, probeSitesChecked) }

var probeDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "probe_duration_seconds",
		Help:    "Wall-clock duration of probe subprocess runs.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 900},
	},
	[]string{"success"},
)

var probeSitesChecked = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "probe_sites_checked_total",
		Help: "Total (username, site) pairs reported by probe runs.",
	},
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func ObserveProbe(seconds float64, sitesChecked int, success bool) {
	probeDurationSeconds.WithLabelValues(strconv.FormatBool(success)).Observe(seconds)
	probeSitesChecked.Add(float64(sitesChecked))
}
