package growth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	skeletonCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growth_skeleton_count_total",
		Help: "The total number of grown skeletons.",
	})

	segmentCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growth_segment_count_total",
		Help: "The total number of grown skeleton segments.",
	})

	degenerateDirectionCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "growth_degenerate_direction_count_total",
		Help: "The total number of growth steps whose forces cancelled out.",
	})
)

func instrumentSkeleton(segments int) {
	skeletonCount.Inc()
	segmentCount.Add(float64(segments))
}

func instrumentDegenerateDirection() {
	degenerateDirectionCount.Inc()
}
