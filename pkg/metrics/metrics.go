// Package metrics provides Prometheus instrumentation for gopipe components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gopipe components.
type Registry struct {
	// Pipe Metrics
	PipeBytesWritten    *prometheus.CounterVec
	PipeBytesRead       *prometheus.CounterVec
	PipeFlushes         *prometheus.CounterVec
	PipeReads           *prometheus.CounterVec
	PipeWakeups         *prometheus.CounterVec
	PipeCancellations   *prometheus.CounterVec
	PipeUnconsumedBytes *prometheus.GaugeVec
	BackpressureEvents  *prometheus.CounterVec

	// Memory Pool Metrics
	PoolRentals     *prometheus.CounterVec
	PoolReturns     *prometheus.CounterVec
	PoolAllocations *prometheus.CounterVec
	PoolAllocFailed *prometheus.CounterVec
	PoolBlocksInUse *prometheus.GaugeVec
	PoolBlocksIdle  *prometheus.GaugeVec

	// Scheduler Metrics
	SchedulerDispatched *prometheus.CounterVec
	SchedulerCompleted  *prometheus.CounterVec
	SchedulerPanics     *prometheus.CounterVec
	SchedulerQueueDepth *prometheus.GaugeVec
}

// DefaultRegistry is the default metrics registry used by gopipe components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Pipe Metrics
		PipeBytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "bytes_written_total",
				Help:      "Total number of bytes committed by the writer",
			},
			[]string{"pipe_name"},
		),

		PipeBytesRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "bytes_read_total",
				Help:      "Total number of bytes consumed by the reader",
			},
			[]string{"pipe_name"},
		),

		PipeFlushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "flushes_total",
				Help:      "Total number of flush operations",
			},
			[]string{"pipe_name"},
		),

		PipeReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "reads_total",
				Help:      "Total number of read operations",
			},
			[]string{"pipe_name"},
		),

		PipeWakeups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "wakeups_total",
				Help:      "Total number of continuations dispatched to wake a suspended side",
			},
			[]string{"pipe_name", "side"},
		),

		PipeCancellations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "cancellations_total",
				Help:      "Total number of pending operations observed as canceled",
			},
			[]string{"pipe_name", "side"},
		),

		PipeUnconsumedBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "unconsumed_bytes",
				Help:      "Bytes committed by the writer and not yet consumed by the reader",
			},
			[]string{"pipe_name"},
		),

		BackpressureEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "pipe",
				Name:      "backpressure_events_total",
				Help:      "Total number of flushes suspended by the pause threshold",
			},
			[]string{"pipe_name"},
		),

		// Memory Pool Metrics
		PoolRentals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "mempool",
				Name:      "rentals_total",
				Help:      "Total number of blocks rented from the pool",
			},
			[]string{"pool_name"},
		),

		PoolReturns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "mempool",
				Name:      "returns_total",
				Help:      "Total number of blocks returned to the pool",
			},
			[]string{"pool_name"},
		),

		PoolAllocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "mempool",
				Name:      "allocations_total",
				Help:      "Total number of fresh block allocations",
			},
			[]string{"pool_name"},
		),

		PoolAllocFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "mempool",
				Name:      "allocation_failures_total",
				Help:      "Total number of failed block requests",
			},
			[]string{"pool_name"},
		),

		PoolBlocksInUse: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopipe",
				Subsystem: "mempool",
				Name:      "blocks_in_use",
				Help:      "Number of blocks currently rented out",
			},
			[]string{"pool_name"},
		),

		PoolBlocksIdle: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopipe",
				Subsystem: "mempool",
				Name:      "blocks_idle",
				Help:      "Number of blocks held idle in freelists",
			},
			[]string{"pool_name"},
		),

		// Scheduler Metrics
		SchedulerDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "scheduler",
				Name:      "dispatched_total",
				Help:      "Total number of continuations submitted for execution",
			},
			[]string{"scheduler_name"},
		),

		SchedulerCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "scheduler",
				Name:      "completed_total",
				Help:      "Total number of continuations that finished executing",
			},
			[]string{"scheduler_name"},
		),

		SchedulerPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gopipe",
				Subsystem: "scheduler",
				Name:      "panics_total",
				Help:      "Total number of continuations that panicked",
			},
			[]string{"scheduler_name"},
		),

		SchedulerQueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gopipe",
				Subsystem: "scheduler",
				Name:      "queue_depth",
				Help:      "Number of continuations waiting for a worker",
			},
			[]string{"scheduler_name"},
		),
	}
}
