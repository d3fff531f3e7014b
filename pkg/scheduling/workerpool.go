package scheduling

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// continuation is a queued callback plus its opaque state.
type continuation struct {
	fn    func(state any)
	state any
}

// WorkerPool runs continuations on a fixed set of worker goroutines draining
// a bounded queue. Use it to keep wakeups off latency-sensitive goroutines
// (e.g. a network event loop flushing into many pipes).
type WorkerPool struct {
	queue   chan continuation
	workers []*worker

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	workerWg     sync.WaitGroup

	mu         sync.RWMutex
	isShutdown bool

	dispatched atomic.Int64
	completed  atomic.Int64
	panics     atomic.Int64
}

// worker is a single pool goroutine.
type worker struct {
	id     int
	pool   *WorkerPool
	stopCh chan struct{}
}

// WorkerPoolStats is a snapshot of pool activity.
type WorkerPoolStats struct {
	// Dispatched is the total number of continuations accepted.
	Dispatched int64

	// Completed is the total number of continuations that finished.
	Completed int64

	// Panics is the number of continuations that panicked.
	Panics int64

	// QueueDepth is the current number of queued continuations.
	QueueDepth int
}

var _ Scheduler = (*WorkerPool)(nil)

// NewWorkerPool creates a worker pool scheduler with the given number of
// workers and queue capacity. Non-positive arguments fall back to 1 worker
// and a queue of 64.
func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	p := &WorkerPool{
		queue:      make(chan continuation, queueSize),
		shutdownCh: make(chan struct{}),
	}

	p.workers = make([]*worker, workers)
	for i := 0; i < workers; i++ {
		w := &worker{id: i, pool: p, stopCh: make(chan struct{})}
		p.workers[i] = w
		p.workerWg.Add(1)
		go w.run()
	}

	return p
}

// Schedule queues the continuation for execution by a worker. If the queue
// is full, Schedule blocks until a worker frees a slot: continuations carry
// pipe wakeups and must never be dropped. After Shutdown, the continuation
// runs on the calling goroutine instead, preserving exactly-once execution.
func (p *WorkerPool) Schedule(fn func(state any), state any) {
	p.mu.RLock()
	isShutdown := p.isShutdown
	p.mu.RUnlock()

	if isShutdown {
		p.runOne(continuation{fn: fn, state: state})
		return
	}

	p.dispatched.Add(1)
	select {
	case p.queue <- continuation{fn: fn, state: state}:
	case <-p.shutdownCh:
		p.runOne(continuation{fn: fn, state: state})
	}
}

// Shutdown stops the workers after the queue drains. The returned channel
// closes when all workers have exited.
func (p *WorkerPool) Shutdown() <-chan struct{} {
	done := make(chan struct{})

	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.isShutdown = true
		p.mu.Unlock()

		close(p.shutdownCh)
		for _, w := range p.workers {
			close(w.stopCh)
		}
	})

	go func() {
		p.workerWg.Wait()
		// Run anything the workers left behind; continuations must not
		// be dropped.
		for {
			select {
			case c := <-p.queue:
				p.runOne(c)
			default:
				close(done)
				return
			}
		}
	}()

	return done
}

// Stats returns a snapshot of pool activity.
func (p *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		Dispatched: p.dispatched.Load(),
		Completed:  p.completed.Load(),
		Panics:     p.panics.Load(),
		QueueDepth: len(p.queue),
	}
}

// Size returns the number of workers in the pool.
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// run is the main loop for a worker.
func (w *worker) run() {
	defer w.pool.workerWg.Done()

	for {
		// Drain pending work before honoring stop.
		select {
		case c := <-w.pool.queue:
			w.pool.runOne(c)
			continue
		default:
		}

		select {
		case <-w.stopCh:
			return
		case c := <-w.pool.queue:
			w.pool.runOne(c)
		}
	}
}

// runOne executes a single continuation with panic isolation: a panicking
// continuation must not take down the worker or the waking side.
func (p *WorkerPool) runOne(c continuation) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			fmt.Fprintf(os.Stderr, "gopipe/scheduling: continuation panicked: %v\n%s", r, debug.Stack())
			return
		}
		p.completed.Add(1)
	}()

	c.fn(c.state)
}
