// Package observability collects the metrics of a run and exports them in the
// Prometheus text format for a node_exporter textfile collector.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Sampling *metrics.SamplingMetrics
}

// NewMetrics creates a new instance of Metrics with its own registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	samplingMetrics, err := metrics.NewSamplingMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampling metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Sampling: samplingMetrics,
	}, nil
}

// Registry exposes the underlying registry as a Gatherer.
func (m *Metrics) Registry() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes every registered metric to path. The file is written
// to a temporary name and renamed, as the textfile collector expects.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.New(fmt.Errorf("write metrics textfile: %w", err)).
			Component("observability").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	return nil
}
