package sampling

import (
	"github.com/aukilabs/sprout/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	domainLabel = "domain"
)

var (
	sampledPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sampling_accepted_points_total",
		Help: "The total number of points accepted by weighted sampling.",
	}, []string{domainLabel})

	rejectedPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sampling_rejected_points_total",
		Help: "The total number of draws rejected by weighted sampling.",
	}, []string{domainLabel})
)

func instrumentDraws(kind models.DomainKind, accepted, rejected int) {
	labels := prometheus.Labels{domainLabel: kind.String()}

	if accepted > 0 {
		sampledPoints.With(labels).Add(float64(accepted))
	}
	if rejected > 0 {
		rejectedPoints.With(labels).Add(float64(rejected))
	}
}
