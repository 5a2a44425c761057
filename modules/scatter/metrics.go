package scatter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"
)

var (
	scatterRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_requests_total",
		Help: "The total number of scatter requests.",
	}, []string{resultLabel})

	scatterPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scatter_points",
		Help:    "The number of points returned by scatter requests.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	scatterQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scatter_queries_total",
		Help: "The total number of scatter queries.",
	}, []string{resultLabel})
)

func instrumentScatter(result string, points int) {
	scatterRequests.With(prometheus.Labels{resultLabel: result}).Inc()
	if result == resultOK {
		scatterPoints.Observe(float64(points))
	}
}

func instrumentQuery(result string) {
	scatterQueries.With(prometheus.Labels{resultLabel: result}).Inc()
}
