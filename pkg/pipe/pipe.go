package pipe

import (
	"fmt"
	"sync"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
	"github.com/vnykmshr/gopipe/pkg/common/validation"
	"github.com/vnykmshr/gopipe/pkg/mempool"
	"github.com/vnykmshr/gopipe/pkg/metrics"
	"github.com/vnykmshr/gopipe/pkg/scheduling"
)

// Errors returned by pipe operations. These alias the shared taxonomy in
// pkg/common/errors so callers can match either way.
var (
	// ErrInvalidOperation indicates a usage contract violation: a second
	// pending read or flush, advancing past unread bytes, or operating on
	// a side that already completed.
	ErrInvalidOperation = gperrors.ErrInvalidOperation

	// ErrCompleted indicates an operation after both sides completed.
	ErrCompleted = gperrors.ErrCompleted

	// ErrAllocation indicates the memory pool could not satisfy a request.
	ErrAllocation = gperrors.ErrAllocation
)

// ReadResult is what a read operation yields: a zero-copy view over the
// unconsumed bytes plus the flags describing why the read returned.
type ReadResult struct {
	// Buffer spans all unconsumed bytes at the time the read completed.
	Buffer Buffer

	// Canceled is set when the read was observed as canceled via
	// CancelPendingRead. Canceled results still carry buffered data.
	Canceled bool

	// Completed is set when the writer has completed; the buffer holds
	// whatever remains. Further reads after draining return empty
	// completed results.
	Completed bool
}

// FlushResult is what a flush operation yields.
type FlushResult struct {
	// Canceled is set when the flush was observed as canceled via
	// CancelPendingFlush. The written data is not dropped.
	Canceled bool

	// Completed is set when either side completed while the flush was in
	// flight; flushing more data is pointless.
	Completed bool
}

// Config holds configuration options for a Pipe.
type Config struct {
	// Pool supplies segment backing blocks. Nil uses a process-wide
	// shared pool with default configuration. The pool must outlive the
	// pipe.
	Pool mempool.Pool

	// PauseWriterThreshold is the number of unconsumed bytes at which
	// Flush suspends the writer. 0 uses the default of 64 KiB.
	PauseWriterThreshold int64

	// ResumeWriterThreshold is the number of unconsumed bytes the reader
	// must drain down to before a suspended flush resumes. Must not
	// exceed PauseWriterThreshold. 0 uses half the pause threshold.
	// The gap between the two thresholds is what prevents pause/resume
	// oscillation when the reader and writer run at similar speeds.
	ResumeWriterThreshold int64

	// MinimumSegmentSize is the smallest block requested per segment
	// allocation. 0 uses the default of 4 KiB.
	MinimumSegmentSize int

	// ReaderScheduler runs continuations that resume a waiting reader.
	// Nil uses scheduling.Inline().
	ReaderScheduler scheduling.Scheduler

	// WriterScheduler runs continuations that resume a suspended writer.
	// Nil uses scheduling.Inline().
	WriterScheduler scheduling.Scheduler
}

// DefaultConfig returns a default pipe configuration.
func DefaultConfig() Config {
	return Config{
		PauseWriterThreshold:  64 * 1024,
		ResumeWriterThreshold: 32 * 1024,
		MinimumSegmentSize:    4096,
	}
}

// readerSlot holds the at-most-one pending read continuation.
type readerSlot struct {
	waiting bool
	future  *ReadFuture
}

// writerSlot holds the at-most-one pending flush continuation.
type writerSlot struct {
	waiting bool
	future  *FlushFuture
}

// wake is a continuation captured under the lock for dispatch outside it.
type wake struct {
	scheduler scheduling.Scheduler
	fn        func(state any)
	state     any
}

// Pipe is a single-producer single-consumer byte pipe over a pooled
// segment chain, with pause/resume flow control and continuation-based
// suspension. Obtain the two ends with Writer and Reader.
//
// The pipe is safe for concurrent use by one writer goroutine and one
// reader goroutine. Two concurrent writer calls (or reader calls) violate
// the usage contract and are reported with ErrInvalidOperation rather than
// serialized.
type Pipe struct {
	mu     sync.Mutex
	config Config
	pool   mempool.Pool

	// Segment chain, oldest unconsumed first. tail is the active write
	// segment and is never released while attached.
	head *segment
	tail *segment

	// Absolute stream offsets. headIndex is the first unconsumed byte,
	// tailIndex the next byte to be committed, examinedIndex how far the
	// reader has looked without consuming.
	headIndex     int64
	tailIndex     int64
	examinedIndex int64

	reader readerSlot
	writer writerSlot

	// readingActive is set while a ReadResult is outstanding, between a
	// completed read and the matching AdvanceTo.
	readingActive bool

	// One-shot sticky cancellation flags, consumed by the next read/flush.
	readCancelPending  bool
	flushCancelPending bool

	readerCompleted bool
	writerCompleted bool
	readerErr       error
	writerErr       error

	bytesWritten int64
	bytesRead    int64
	flushes      int64
	reads        int64
	wakeups      int64

	readerFacade Reader
	writerFacade Writer

	// Metrics instrumentation, nil unless created via NewWithMetrics.
	name string
	mreg *metrics.Registry
}

// Stats is a snapshot of pipe activity.
type Stats struct {
	// BytesWritten is the total number of bytes committed by the writer.
	BytesWritten int64

	// BytesRead is the total number of bytes consumed by the reader.
	BytesRead int64

	// Flushes is the total number of flush operations.
	Flushes int64

	// Reads is the total number of read operations.
	Reads int64

	// Wakeups is the number of continuations dispatched to resume a
	// suspended side.
	Wakeups int64

	// Unconsumed is the number of committed bytes not yet consumed.
	Unconsumed int64
}

var (
	sharedPoolOnce sync.Once
	sharedPool     *mempool.BlockPool
)

// defaultPool returns the process-wide pool used by pipes constructed
// without an explicit Pool.
func defaultPool() mempool.Pool {
	sharedPoolOnce.Do(func() {
		// DefaultConfig never fails validation.
		sharedPool, _ = mempool.New()
	})
	return sharedPool
}

// New creates a Pipe with default configuration.
func New() *Pipe {
	p, err := NewWithConfig(DefaultConfig())
	if err != nil {
		// DefaultConfig is always valid.
		panic(err)
	}
	return p
}

// NewWithConfig creates a Pipe with the given configuration.
func NewWithConfig(config Config) (*Pipe, error) {
	if config.PauseWriterThreshold == 0 {
		config.PauseWriterThreshold = 64 * 1024
	}
	if config.ResumeWriterThreshold == 0 {
		config.ResumeWriterThreshold = config.PauseWriterThreshold / 2
	}
	if config.MinimumSegmentSize == 0 {
		config.MinimumSegmentSize = 4096
	}
	if config.ReaderScheduler == nil {
		config.ReaderScheduler = scheduling.Inline()
	}
	if config.WriterScheduler == nil {
		config.WriterScheduler = scheduling.Inline()
	}
	if config.Pool == nil {
		config.Pool = defaultPool()
	}

	if err := validation.ValidateNonNegative("pipe", "PauseWriterThreshold", config.PauseWriterThreshold); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegative("pipe", "ResumeWriterThreshold", config.ResumeWriterThreshold); err != nil {
		return nil, err
	}
	if err := validation.ValidateAtMost("pipe", "ResumeWriterThreshold", config.ResumeWriterThreshold,
		"PauseWriterThreshold", config.PauseWriterThreshold); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive("pipe", "MinimumSegmentSize", config.MinimumSegmentSize); err != nil {
		return nil, err
	}

	p := &Pipe{config: config, pool: config.Pool}
	p.readerFacade = Reader{pipe: p}
	p.writerFacade = Writer{pipe: p}
	return p, nil
}

// Writer returns the producing end of the pipe.
func (p *Pipe) Writer() *Writer {
	return &p.writerFacade
}

// Reader returns the consuming end of the pipe.
func (p *Pipe) Reader() *Reader {
	return &p.readerFacade
}

// Stats returns a snapshot of pipe activity.
func (p *Pipe) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		BytesWritten: p.bytesWritten,
		BytesRead:    p.bytesRead,
		Flushes:      p.flushes,
		Reads:        p.reads,
		Wakeups:      p.wakeups,
		Unconsumed:   p.unconsumedLocked(),
	}
}

// Reset returns a fully completed pipe to its initial state so it can be
// reused. Resetting before both sides completed fails with
// ErrInvalidOperation.
func (p *Pipe) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.readerCompleted || !p.writerCompleted {
		return fmt.Errorf("pipe: reset before both sides completed: %w", ErrInvalidOperation)
	}

	p.head, p.tail = nil, nil
	p.headIndex, p.tailIndex, p.examinedIndex = 0, 0, 0
	p.reader = readerSlot{}
	p.writer = writerSlot{}
	p.readingActive = false
	p.readCancelPending = false
	p.flushCancelPending = false
	p.readerCompleted, p.writerCompleted = false, false
	p.readerErr, p.writerErr = nil, nil
	return nil
}

func (p *Pipe) unconsumedLocked() int64 {
	return p.tailIndex - p.headIndex
}

func (p *Pipe) bothCompletedLocked() bool {
	return p.readerCompleted && p.writerCompleted
}

// dispatch runs captured continuations through their schedulers. Never
// called with the lock held.
func (p *Pipe) dispatch(wakes []wake) {
	for _, w := range wakes {
		w.scheduler.Schedule(w.fn, w.state)
	}
}

// notifyRead is the continuation body for a resumed read: the result was
// stored before dispatch, so resuming is just releasing the waiter.
func notifyRead(state any) {
	state.(*ReadFuture).finish()
}

// notifyFlush is the continuation body for a resumed flush.
func notifyFlush(state any) {
	state.(*FlushFuture).finish()
}

// readResultLocked snapshots the unconsumed byte range as a ReadResult.
func (p *Pipe) readResultLocked(canceled bool) ReadResult {
	var slices [][]byte
	for s := p.head; s != nil; s = s.next {
		if chunk := s.readableSlice(); len(chunk) > 0 {
			slices = append(slices, chunk)
		}
	}
	return ReadResult{
		Buffer:    Buffer{slices: slices, start: p.headIndex, end: p.tailIndex},
		Canceled:  canceled,
		Completed: p.writerCompleted,
	}
}

// wakeReaderLocked resolves the pending read continuation, if any, and
// returns the wake to dispatch after unlocking.
func (p *Pipe) wakeReaderLocked(canceled bool, wakes []wake) []wake {
	if !p.reader.waiting {
		return wakes
	}
	f := p.reader.future
	p.reader = readerSlot{}
	p.wakeups++

	if p.writerErr != nil {
		f.err = p.writerErr
	} else {
		f.result = p.readResultLocked(canceled)
		p.readingActive = true
	}
	if p.mreg != nil {
		p.mreg.PipeWakeups.WithLabelValues(p.name, "reader").Inc()
		if canceled {
			p.mreg.PipeCancellations.WithLabelValues(p.name, "reader").Inc()
		}
	}
	return append(wakes, wake{p.config.ReaderScheduler, notifyRead, f})
}

// wakeWriterLocked resolves the pending flush continuation, if any.
func (p *Pipe) wakeWriterLocked(result FlushResult, err error, wakes []wake) []wake {
	if !p.writer.waiting {
		return wakes
	}
	f := p.writer.future
	p.writer = writerSlot{}
	p.wakeups++

	if err != nil {
		f.err = err
	} else {
		f.result = result
	}
	if p.mreg != nil {
		p.mreg.PipeWakeups.WithLabelValues(p.name, "writer").Inc()
		if result.Canceled {
			p.mreg.PipeCancellations.WithLabelValues(p.name, "writer").Inc()
		}
	}
	return append(wakes, wake{p.config.WriterScheduler, notifyFlush, f})
}

// releaseAllLocked returns every attached segment to the pool. Called once
// both sides have completed.
func (p *Pipe) releaseAllLocked() {
	for s := p.head; s != nil; {
		next := s.next
		s.next = nil
		p.pool.Return(s.block)
		s = next
	}
	p.head, p.tail = nil, nil
	p.headIndex = p.tailIndex
	p.examinedIndex = p.tailIndex
}

// getWriteBuffer returns writable space in the tail segment, growing the
// chain from the pool when the tail is full or absent.
func (p *Pipe) getWriteBuffer(sizeHint int) ([]byte, error) {
	p.mu.Lock()

	if p.bothCompletedLocked() {
		p.mu.Unlock()
		return nil, fmt.Errorf("pipe: get write buffer: %w", ErrCompleted)
	}
	if p.writerCompleted {
		p.mu.Unlock()
		return nil, fmt.Errorf("pipe: get write buffer after writer completed: %w", ErrInvalidOperation)
	}

	if p.tail != nil && p.tail.availableToWrite() > 0 {
		buf := p.tail.writableSlice()
		p.mu.Unlock()
		return buf, nil
	}

	if sizeHint < p.config.MinimumSegmentSize {
		sizeHint = p.config.MinimumSegmentSize
	}
	p.mu.Unlock()

	// Rent outside the lock: pool allocation may touch the OS. The single
	// writer contract means nobody else grows the chain meanwhile.
	block, err := p.pool.Rent(sizeHint)
	if err != nil {
		return nil, fmt.Errorf("pipe: get write buffer: %w", err)
	}

	p.mu.Lock()
	if p.bothCompletedLocked() {
		p.mu.Unlock()
		p.pool.Return(block)
		return nil, fmt.Errorf("pipe: get write buffer: %w", ErrCompleted)
	}
	if p.writerCompleted {
		p.mu.Unlock()
		p.pool.Return(block)
		return nil, fmt.Errorf("pipe: get write buffer after writer completed: %w", ErrInvalidOperation)
	}
	seg := newSegment(block, p.tailIndex)
	if p.tail == nil {
		p.head, p.tail = seg, seg
	} else {
		p.tail.next = seg
		p.tail = seg
	}
	buf := seg.writableSlice()
	p.mu.Unlock()
	return buf, nil
}

// advanceWriter commits n bytes into the tail segment. Committing more
// than the granted capacity is a fatal programming error.
func (p *Pipe) advanceWriter(n int) error {
	p.mu.Lock()

	if p.bothCompletedLocked() {
		p.mu.Unlock()
		return fmt.Errorf("pipe: advance: %w", ErrCompleted)
	}
	if p.writerCompleted {
		p.mu.Unlock()
		return fmt.Errorf("pipe: advance after writer completed: %w", ErrInvalidOperation)
	}
	if n == 0 {
		p.mu.Unlock()
		return nil
	}
	if p.tail == nil {
		p.mu.Unlock()
		panic("gopipe: advanced without a granted write buffer")
	}

	p.tail.advance(n) // panics past granted capacity
	p.tailIndex += int64(n)
	p.bytesWritten += int64(n)
	if p.mreg != nil {
		p.mreg.PipeBytesWritten.WithLabelValues(p.name).Add(float64(n))
		p.mreg.PipeUnconsumedBytes.WithLabelValues(p.name).Set(float64(p.unconsumedLocked()))
	}
	p.mu.Unlock()
	return nil
}

// flushAsync publishes committed bytes: it wakes a waiting reader and
// decides whether the writer must pause for backpressure.
func (p *Pipe) flushAsync() *FlushFuture {
	f := newFlushFuture()
	p.mu.Lock()

	if p.bothCompletedLocked() {
		p.mu.Unlock()
		f.fail(fmt.Errorf("pipe: flush: %w", ErrCompleted))
		return f
	}
	if p.writerCompleted {
		p.mu.Unlock()
		f.fail(fmt.Errorf("pipe: flush after writer completed: %w", ErrInvalidOperation))
		return f
	}
	if p.writer.waiting {
		p.mu.Unlock()
		f.fail(fmt.Errorf("pipe: flush already pending: %w", ErrInvalidOperation))
		return f
	}

	p.flushes++
	if p.mreg != nil {
		p.mreg.PipeFlushes.WithLabelValues(p.name).Inc()
	}

	// Edge-triggered wake: only a reader that is currently waiting needs
	// a continuation, and only when the flush made bytes visible beyond
	// the examined position. A reader that examined everything it saw
	// stays suspended through an empty flush.
	var wakes []wake
	if p.tailIndex > p.examinedIndex {
		wakes = p.wakeReaderLocked(false, wakes)
	}

	switch {
	case p.flushCancelPending:
		p.flushCancelPending = false
		p.mu.Unlock()
		p.dispatch(wakes)
		f.succeed(FlushResult{Canceled: true})

	case p.readerCompleted:
		err := p.readerErr
		p.mu.Unlock()
		p.dispatch(wakes)
		if err != nil {
			f.fail(err)
		} else {
			f.succeed(FlushResult{Completed: true})
		}

	case p.unconsumedLocked() >= p.config.PauseWriterThreshold:
		p.writer = writerSlot{waiting: true, future: f}
		if p.mreg != nil {
			p.mreg.BackpressureEvents.WithLabelValues(p.name).Inc()
		}
		p.mu.Unlock()
		p.dispatch(wakes)

	default:
		p.mu.Unlock()
		p.dispatch(wakes)
		f.succeed(FlushResult{})
	}

	return f
}

// readAsync returns a view over unconsumed bytes, or registers the read
// continuation when nothing new is available.
func (p *Pipe) readAsync() *ReadFuture {
	f := newReadFuture()
	p.mu.Lock()

	if p.bothCompletedLocked() {
		p.mu.Unlock()
		f.fail(fmt.Errorf("pipe: read: %w", ErrCompleted))
		return f
	}
	if p.readerCompleted {
		p.mu.Unlock()
		f.fail(fmt.Errorf("pipe: read after reader completed: %w", ErrInvalidOperation))
		return f
	}
	if p.reader.waiting || p.readingActive {
		p.mu.Unlock()
		f.fail(fmt.Errorf("pipe: read already pending: %w", ErrInvalidOperation))
		return f
	}

	p.reads++
	if p.mreg != nil {
		p.mreg.PipeReads.WithLabelValues(p.name).Inc()
	}

	if p.readCancelPending {
		p.readCancelPending = false
		result := p.readResultLocked(true)
		p.readingActive = true
		if p.mreg != nil {
			p.mreg.PipeCancellations.WithLabelValues(p.name, "reader").Inc()
		}
		p.mu.Unlock()
		f.succeed(result)
		return f
	}

	// Unexamined bytes, or a completed writer, complete the read
	// synchronously. Examined-but-unconsumed bytes alone do not: the
	// reader told us it needs more data before they become useful.
	if p.tailIndex > p.examinedIndex || p.writerCompleted {
		if p.writerErr != nil {
			err := p.writerErr
			p.mu.Unlock()
			f.fail(err)
			return f
		}
		result := p.readResultLocked(false)
		p.readingActive = true
		p.mu.Unlock()
		f.succeed(result)
		return f
	}

	p.reader = readerSlot{waiting: true, future: f}
	p.mu.Unlock()
	return f
}

// advanceReader releases consumed segments and records how far the reader
// examined, waking a paused writer when consumption crosses the resume
// threshold.
func (p *Pipe) advanceReader(consumed, examined int64) error {
	p.mu.Lock()

	if p.bothCompletedLocked() {
		p.mu.Unlock()
		return fmt.Errorf("pipe: advance reader: %w", ErrCompleted)
	}
	if p.readerCompleted {
		p.mu.Unlock()
		return fmt.Errorf("pipe: advance after reader completed: %w", ErrInvalidOperation)
	}
	if !p.readingActive {
		p.mu.Unlock()
		return fmt.Errorf("pipe: advance without an outstanding read: %w", ErrInvalidOperation)
	}
	if consumed < p.headIndex || consumed > examined || examined > p.tailIndex || examined < p.examinedIndex {
		p.mu.Unlock()
		return fmt.Errorf("pipe: advance to consumed=%d examined=%d outside buffered range [%d,%d]: %w",
			consumed, examined, p.headIndex, p.tailIndex, ErrInvalidOperation)
	}

	// Release every segment that lies entirely at or before the consumed
	// offset. The tail stays attached: it is the active write segment.
	for p.head != nil && p.head != p.tail && consumed >= p.head.absEnd() {
		seg := p.head
		p.head = seg.next
		seg.next = nil
		p.pool.Return(seg.block)
	}
	if p.head != nil && consumed > p.head.absStart() {
		p.head.consumeTo(consumed)
	}

	released := consumed - p.headIndex
	p.bytesRead += released
	p.headIndex = consumed
	p.examinedIndex = examined
	p.readingActive = false

	if p.mreg != nil {
		p.mreg.PipeBytesRead.WithLabelValues(p.name).Add(float64(released))
		p.mreg.PipeUnconsumedBytes.WithLabelValues(p.name).Set(float64(p.unconsumedLocked()))
	}

	var wakes []wake
	if p.writer.waiting && p.unconsumedLocked() <= p.config.ResumeWriterThreshold {
		wakes = p.wakeWriterLocked(FlushResult{}, nil, wakes)
	}
	p.mu.Unlock()
	p.dispatch(wakes)
	return nil
}

// cancelPendingRead wakes a pending read with the canceled flag, or arms
// the one-shot flag for the next read.
func (p *Pipe) cancelPendingRead() {
	p.mu.Lock()
	if p.reader.waiting {
		wakes := p.wakeReaderLocked(true, nil)
		p.mu.Unlock()
		p.dispatch(wakes)
		return
	}
	p.readCancelPending = true
	p.mu.Unlock()
}

// cancelPendingFlush wakes a pending flush with the canceled flag, or arms
// the one-shot flag for the next flush.
func (p *Pipe) cancelPendingFlush() {
	p.mu.Lock()
	if p.writer.waiting {
		wakes := p.wakeWriterLocked(FlushResult{Canceled: true}, nil, nil)
		p.mu.Unlock()
		p.dispatch(wakes)
		return
	}
	p.flushCancelPending = true
	p.mu.Unlock()
}

// completeWriter marks the writer side terminal and wakes the reader with
// the completion indicator. Idempotent.
func (p *Pipe) completeWriter(err error) {
	p.mu.Lock()
	if p.writerCompleted {
		p.mu.Unlock()
		return
	}
	p.writerCompleted = true
	p.writerErr = err

	var wakes []wake
	wakes = p.wakeReaderLocked(false, wakes)
	// A flush suspended by backpressure resolves as completed rather than
	// dangling forever.
	wakes = p.wakeWriterLocked(FlushResult{Completed: true}, nil, wakes)

	if p.readerCompleted {
		p.releaseAllLocked()
	}
	p.mu.Unlock()
	p.dispatch(wakes)
}

// completeReader marks the reader side terminal and wakes the writer with
// the completion indicator. Idempotent. Once both sides are complete all
// buffered memory returns to the pool.
func (p *Pipe) completeReader(err error) {
	p.mu.Lock()
	if p.readerCompleted {
		p.mu.Unlock()
		return
	}
	p.readerCompleted = true
	p.readerErr = err
	p.readingActive = false

	var wakes []wake
	if err != nil {
		wakes = p.wakeWriterLocked(FlushResult{}, err, wakes)
	} else {
		wakes = p.wakeWriterLocked(FlushResult{Completed: true}, nil, wakes)
	}
	// Completing the reader while its own read is pending is a contract
	// violation; the pending read fails rather than yielding a view into
	// memory about to be released.
	if p.reader.waiting {
		f := p.reader.future
		p.reader = readerSlot{}
		f.err = fmt.Errorf("pipe: reader completed with a read pending: %w", ErrInvalidOperation)
		wakes = append(wakes, wake{p.config.ReaderScheduler, notifyRead, f})
	}

	if p.writerCompleted {
		p.releaseAllLocked()
	}
	p.mu.Unlock()
	p.dispatch(wakes)
}
