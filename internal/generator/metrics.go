package generator

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadsmith_generations_total",
			Help: "Post generations by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	imagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threadsmith_images_total",
			Help: "Image generations by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, imagesTotal)
}

func observeGeneration(provider string, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	generationsTotal.WithLabelValues(provider, outcome).Inc()
}
