package warp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	warpedVertexCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warp_vertex_count_total",
		Help: "The total number of warped mesh vertices.",
	})

	degenerateFrameCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warp_degenerate_frame_count_total",
		Help: "The total number of cross-sections built from a fallback axis.",
	})
)

func instrumentWarp(vertices int) {
	warpedVertexCount.Add(float64(vertices))
}

func instrumentDegenerateDirection() {
	degenerateFrameCount.Inc()
}
