// Package metrics provides Prometheus instrumentation for gopipe components.
//
// This package enables monitoring and observability for gopipe's pipe engine,
// memory pool, and continuation schedulers through Prometheus metrics.
//
// # Overview
//
// The metrics package provides automatic instrumentation for:
//   - Pipe traffic (bytes written/read, flushes, reads, wakeups, cancellations)
//   - Flow control (backpressure events, unconsumed byte gauge)
//   - Memory pool activity (rentals, returns, allocations, failures, in-use blocks)
//   - Continuation schedulers (dispatched, completed, panics, queue depth)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	// Pipe with metrics
//	p, err := pipe.NewWithMetrics("upload")
//
//	// Memory pool with metrics
//	pool, err := mempool.NewWithMetrics("shared")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	p, err := pipe.NewWithConfigAndMetrics(pipe.DefaultConfig(), "upload", config)
//
// # Available Metrics
//
// ## Pipe Metrics
//
//   - gopipe_pipe_bytes_written_total: Bytes committed by the writer
//   - gopipe_pipe_bytes_read_total: Bytes consumed by the reader
//   - gopipe_pipe_flushes_total: Flush operations
//   - gopipe_pipe_reads_total: Read operations
//   - gopipe_pipe_wakeups_total: Continuations dispatched to wake a suspended side
//   - gopipe_pipe_cancellations_total: Pending operations observed as canceled
//   - gopipe_pipe_unconsumed_bytes: Committed bytes not yet consumed
//   - gopipe_pipe_backpressure_events_total: Flushes suspended by the pause threshold
//
// ## Memory Pool Metrics
//
//   - gopipe_mempool_rentals_total: Blocks rented from the pool
//   - gopipe_mempool_returns_total: Blocks returned to the pool
//   - gopipe_mempool_allocations_total: Fresh block allocations
//   - gopipe_mempool_allocation_failures_total: Failed block requests
//   - gopipe_mempool_blocks_in_use: Blocks currently rented out
//   - gopipe_mempool_blocks_idle: Blocks held idle in freelists
//
// ## Scheduler Metrics
//
//   - gopipe_scheduler_dispatched_total: Continuations submitted for execution
//   - gopipe_scheduler_completed_total: Continuations that finished executing
//   - gopipe_scheduler_panics_total: Continuations that panicked
//   - gopipe_scheduler_queue_depth: Continuations waiting for a worker
//
// # Labels
//
// Metrics include relevant labels for filtering and aggregation:
//
//   - pipe_name: User-provided name for the pipe instance
//   - pool_name: User-provided name for the memory pool instance
//   - scheduler_name: User-provided name for the scheduler instance
//   - side: "reader" or "writer" for wakeup/cancellation counters
//
// # Performance
//
// Metrics collection is designed for minimal overhead:
//   - Metrics are updated only when operations occur
//   - No background goroutines or timers
//   - Conditional metrics updates based on enabled state
package metrics
