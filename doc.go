/*
Package gopipe provides a high-performance in-process byte pipe with
pooled buffers, flow control, and pluggable continuation scheduling.

Pipe (pkg/pipe):
  - Writer: rent buffer space, commit in place, flush with backpressure
  - Reader: zero-copy multi-segment views, consumed/examined positions
  - pause/resume thresholds with hysteresis between producer and consumer

Memory (pkg/mempool):
  - power-of-two block pool with freelists and optional mmap backing
  - scheduled trimming of idle blocks

Scheduling (pkg/scheduling):
  - Inline, Goroutine, WorkerPool, and Serial continuation schedulers

IO bridges (pkg/pipeio):
  - FillFrom / DrainTo pump loops, io.ReadCloser / io.WriteCloser adapters

Example usage:

	import (
		"github.com/vnykmshr/gopipe/pkg/pipe"
	)

	p := pipe.New()

	// producer
	buf, _ := p.Writer().GetBuffer(0)
	n := copy(buf, data)
	p.Writer().Advance(n)
	p.Writer().Flush(ctx)

	// consumer
	result, _ := p.Reader().Read(ctx)
	process(result.Buffer.Slices())
	p.Reader().AdvanceTo(result.Buffer.End())
*/
package gopipe
