package reddit

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "threadsmith",
			Subsystem: "reddit",
			Name:      "requests_total",
			Help:      "Upstream requests by host and outcome.",
		},
		[]string{"host", "outcome"},
	)

	searchTierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "threadsmith",
			Subsystem: "reddit",
			Name:      "search_results_total",
			Help:      "Searches by the ladder tier that produced the result.",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, searchTierTotal)
}

const (
	outcomeOK        = "ok"
	outcomeError     = "error"
	outcomeRejected  = "rejected"
	outcomeTransport = "transport"

	tierSearch   = "search"
	tierSampling = "sampling"
	tierNone     = "exhausted"
)
