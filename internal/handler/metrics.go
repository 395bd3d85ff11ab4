package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	playsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lingo_server_plays_started_total",
		Help: "Total number of started play episodes.",
	})

	playsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lingo_server_plays_completed_total",
		Help: "Total number of completed play episodes.",
	})

	slotsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingo_server_slots_generated_total",
			Help: "Total number of generated slots by marker type and status.",
		},
		[]string{"type", "status"},
	)
)
