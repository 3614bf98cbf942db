// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package sched

import "github.com/prometheus/client_golang/prometheus"

// collector exposes a Scheduler's counters as Prometheus gauges.
type collector[T any] struct {
	s *Scheduler[T]

	pending *prometheus.Desc
	active  *prometheus.Desc
	maxPar  *prometheus.Desc
}

// NewCollector returns a prometheus.Collector reporting the scheduler's
// pending item count, in-flight worker count and parallelism cap.
func NewCollector[T any](s *Scheduler[T]) prometheus.Collector {
	return &collector[T]{
		s: s,
		pending: prometheus.NewDesc("sched_pending_work_items",
			"Number of work items not yet handed to the executor", nil, nil),
		active: prometheus.NewDesc("sched_active_workers",
			"Number of work items currently executing", nil, nil),
		maxPar: prometheus.NewDesc("sched_max_parallelism",
			"Configured parallelism cap, 0 meaning unlimited", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *collector[T]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pending
	ch <- c.active
	ch <- c.maxPar
}

// Collect implements prometheus.Collector.
func (c *collector[T]) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue,
		float64(c.s.Pending()))
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue,
		float64(c.s.activeWorkers()))
	ch <- prometheus.MustNewConstMetric(c.maxPar, prometheus.GaugeValue,
		float64(c.s.MaxParallelism()))
}
