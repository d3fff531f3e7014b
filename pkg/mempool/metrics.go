package mempool

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/gopipe/pkg/metrics"
)

// MetricsPool wraps a Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry *metrics.Registry
	enabled  bool

	lastAllocated atomic.Int64
}

var _ Pool = (*MetricsPool)(nil)

// NewWithMetrics creates a default BlockPool with metrics enabled.
func NewWithMetrics(name string) (Pool, error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}
	return NewWithConfigAndMetrics(DefaultConfig(), name, config)
}

// NewWithConfigAndMetrics creates a BlockPool with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Pool, error) {
	basePool, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}

	if !metricsConfig.Enabled {
		return basePool, nil
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	return &MetricsPool{
		pool:     basePool,
		name:     name,
		registry: registry,
		enabled:  true,
	}, nil
}

// Rent returns a block of at least minSize bytes.
func (mp *MetricsPool) Rent(minSize int) (*Block, error) {
	b, err := mp.pool.Rent(minSize)

	if mp.enabled {
		if err != nil {
			mp.registry.PoolAllocFailed.WithLabelValues(mp.name).Inc()
		} else {
			mp.registry.PoolRentals.WithLabelValues(mp.name).Inc()
		}
		mp.observeGauges()
	}

	return b, err
}

// Return makes the block eligible for reuse.
func (mp *MetricsPool) Return(b *Block) {
	mp.pool.Return(b)

	if mp.enabled {
		mp.registry.PoolReturns.WithLabelValues(mp.name).Inc()
		mp.observeGauges()
	}
}

// Stats returns a snapshot of pool counters.
func (mp *MetricsPool) Stats() Stats {
	return mp.pool.Stats()
}

// Close releases all idle blocks and stops background maintenance.
func (mp *MetricsPool) Close() error {
	return mp.pool.Close()
}

func (mp *MetricsPool) observeGauges() {
	stats := mp.pool.Stats()
	mp.registry.PoolBlocksInUse.WithLabelValues(mp.name).Set(float64(stats.InUse))
	mp.registry.PoolBlocksIdle.WithLabelValues(mp.name).Set(float64(stats.Idle))

	last := mp.lastAllocated.Swap(stats.Allocated)
	if delta := stats.Allocated - last; delta > 0 {
		mp.registry.PoolAllocations.WithLabelValues(mp.name).Add(float64(delta))
	}
}
