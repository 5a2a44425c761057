package blade

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"

	resultOK      = "ok"
	resultFailed  = "failed"
	resultSkipped = "skipped"
	resultInvalid = "invalid"
)

var (
	bladeInstances = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blade_instances_total",
		Help: "The total number of blade instances by result.",
	}, []string{resultLabel})

	bladeInstanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "blade_instance_duration_seconds",
		Help: "The time to grow and warp a blade instance.",
	})

	bladeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blade_requests_total",
		Help: "The total number of blade requests by result.",
	}, []string{resultLabel})
)

func instrumentInstance(result string, d time.Duration) {
	bladeInstances.With(prometheus.Labels{resultLabel: result}).Inc()
	if result == resultOK {
		bladeInstanceDuration.Observe(d.Seconds())
	}
}

func instrumentRequest(result string) {
	bladeRequests.With(prometheus.Labels{resultLabel: result}).Inc()
}
