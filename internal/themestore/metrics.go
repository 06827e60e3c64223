package themestore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MetricWrites counts full-list writes to the themes slot by outcome
	MetricWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chroma_theme_store_writes_total",
		Help: "Total theme list writes by outcome",
	}, []string{"outcome"})

	// MetricThemes tracks the number of themes currently held in memory
	MetricThemes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chroma_theme_store_themes",
		Help: "Number of saved themes currently held by the store",
	})
)
