package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_imported_total",
		Help: "Rows successfully normalized and stored, by destination.",
	}, []string{"destination"})

	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_skipped_total",
		Help: "Rows dropped during normalization, by destination.",
	}, []string{"destination"})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_duration_seconds",
		Help:    "Wall time of one file import.",
		Buckets: prometheus.DefBuckets,
	}, []string{"destination"})
)
