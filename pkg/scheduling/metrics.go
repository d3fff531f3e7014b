package scheduling

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopipe/pkg/metrics"
)

// MetricsScheduler wraps a Scheduler with Prometheus metrics collection.
type MetricsScheduler struct {
	scheduler Scheduler
	name      string
	registry  *metrics.Registry
	enabled   bool
}

var _ Scheduler = (*MetricsScheduler)(nil)

// NewWithMetrics wraps the given scheduler with metrics under its own
// Prometheus registry.
func NewWithMetrics(scheduler Scheduler, name string) Scheduler {
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}
	return NewWithConfigAndMetrics(scheduler, name, config)
}

// NewWithConfigAndMetrics wraps the given scheduler with metrics using the
// provided metrics configuration.
func NewWithConfigAndMetrics(scheduler Scheduler, name string, metricsConfig metrics.Config) Scheduler {
	if !metricsConfig.Enabled {
		return scheduler
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return &MetricsScheduler{
		scheduler: scheduler,
		name:      name,
		registry:  registry,
		enabled:   true,
	}
}

// Schedule dispatches the continuation through the wrapped scheduler,
// counting dispatches and completions.
func (ms *MetricsScheduler) Schedule(fn func(state any), state any) {
	if !ms.enabled {
		ms.scheduler.Schedule(fn, state)
		return
	}

	ms.registry.SchedulerDispatched.WithLabelValues(ms.name).Inc()
	ms.registry.SchedulerQueueDepth.WithLabelValues(ms.name).Inc()

	ms.scheduler.Schedule(func(st any) {
		ms.registry.SchedulerQueueDepth.WithLabelValues(ms.name).Dec()
		defer func() {
			if r := recover(); r != nil {
				ms.registry.SchedulerPanics.WithLabelValues(ms.name).Inc()
				panic(r)
			}
			ms.registry.SchedulerCompleted.WithLabelValues(ms.name).Inc()
		}()
		fn(st)
	}, state)
}
