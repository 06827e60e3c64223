package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MetricExtractions counts extraction attempts by input kind and outcome
	MetricExtractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chroma_extractions_total",
		Help: "Total palette extractions by input kind and outcome",
	}, []string{"kind", "outcome"})

	// MetricExtractionDuration tracks model latency for extractions
	MetricExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chroma_extraction_duration_seconds",
		Help:    "Palette extraction model call duration in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"kind"})

	// MetricNamings counts theme name suggestions by outcome
	MetricNamings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chroma_theme_namings_total",
		Help: "Total theme name suggestions by outcome",
	}, []string{"outcome"})
)

const (
	outcomeSuccess      = "success"
	outcomeCallError    = "call_error"
	outcomeFormatError  = "format_error"
	outcomeInvalidInput = "invalid_input"
	outcomeEmpty        = "empty"
)
