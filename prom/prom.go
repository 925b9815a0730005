/*
Package prom holds the Prometheus collectors of the uniqueness check and the
distinct count comparison. They register on the default registry.
*/
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sketchkit_check_results_total",
		Help: "The total number of uniqueness check classifications",
	}, []string{"status"})
	CheckBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchkit_check_batches_total",
		Help: "The total number of uniqueness check batches run",
	})
	CompareItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchkit_compare_items_total",
		Help: "The total number of items fed into distinct count comparisons",
	})
	CompareDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sketchkit_compare_duration_seconds",
		Help:    "Duration of each distinct counting method",
		Buckets: []float64{.00001, .0001, .001, .01, .1, 1.0, 5.0, 10.0},
	}, []string{"method"})
	LogLinesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sketchkit_log_lines_skipped_total",
		Help: "Log lines dropped while loading addresses",
	}, []string{"reason"})
)
