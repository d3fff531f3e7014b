package pipe

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopipe/pkg/metrics"
)

// NewWithMetrics creates a default Pipe with metrics enabled under the
// given pipe name.
func NewWithMetrics(name string) (*Pipe, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}
	return NewWithConfigAndMetrics(DefaultConfig(), name, config)
}

// NewWithConfigAndMetrics creates a Pipe with custom config and metrics.
// Unlike the pool wrapper, pipe instrumentation lives inside the engine:
// wakeups and backpressure suspensions are not observable from outside.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (*Pipe, error) {
	p, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	if !metricsConfig.Enabled {
		return p, nil
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}
	p.name = name
	p.mreg = registry
	return p, nil
}
