package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	factsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Subsystem: "engine",
		Name:      "facts_extracted_total",
		Help:      "Facts extracted from processed interactions.",
	})

	evolutionActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recall",
		Subsystem: "engine",
		Name:      "evolution_actions_total",
		Help:      "Evolution decisions executed, by action.",
	}, []string{"action"})

	processingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "recall",
		Subsystem: "engine",
		Name:      "interaction_processing_seconds",
		Help:      "Wall time spent processing one interaction.",
		Buckets:   prometheus.DefBuckets,
	})

	decayRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "recall",
		Subsystem: "engine",
		Name:      "decay_runs_total",
		Help:      "Completed importance-decay sweeps.",
	})
)
