// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics counts what a transfer run did. A run is one process, so
// the counters are exported once at exit to a node-exporter textfile rather
// than served over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "waveform_transfer"

const (
	OutcomeOK   = "ok"
	OutcomeFail = "fail"
)

// Collector is safe to use as a nil pointer; every method is then a no-op.
type Collector struct {
	registry       *prometheus.Registry
	catalogRefresh *prometheus.CounterVec
	activations    *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	filesSubmitted prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		catalogRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refresh_total",
			Help:      "Endpoint listing refreshes by partition and outcome.",
		}, []string{"partition", "outcome"}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activation_total",
			Help:      "Endpoint activation attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_total",
			Help:      "Transfer submissions by outcome.",
		}, []string{"outcome"}),
		filesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_submitted_total",
			Help:      "Files included in accepted transfer submissions.",
		}),
	}
	c.registry.MustRegister(c.catalogRefresh, c.activations, c.submissions, c.filesSubmitted)
	return c
}

func outcome(ok bool) string {
	if ok {
		return OutcomeOK
	}
	return OutcomeFail
}

func (c *Collector) CatalogRefresh(partition string, ok bool) {
	if c == nil {
		return
	}
	c.catalogRefresh.WithLabelValues(partition, outcome(ok)).Inc()
}

func (c *Collector) Activation(strategy string, ok bool) {
	if c == nil {
		return
	}
	c.activations.WithLabelValues(strategy, outcome(ok)).Inc()
}

func (c *Collector) Submission(files int, ok bool) {
	if c == nil {
		return
	}
	c.submissions.WithLabelValues(outcome(ok)).Inc()
	if ok {
		c.filesSubmitted.Add(float64(files))
	}
}

func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return prometheus.NewRegistry()
	}
	return c.registry
}

// WriteTextfile writes all counters in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.Gatherer())
}
