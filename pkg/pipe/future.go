package pipe

import "context"

// ReadFuture is the handle for an in-flight read. It resolves at most
// once, either synchronously when data was already buffered or later when
// a flush, cancellation, or completion wakes the reader.
type ReadFuture struct {
	done   chan struct{}
	result ReadResult
	err    error
}

func newReadFuture() *ReadFuture {
	return &ReadFuture{done: make(chan struct{})}
}

func (f *ReadFuture) succeed(result ReadResult) {
	f.result = result
	close(f.done)
}

func (f *ReadFuture) fail(err error) {
	f.err = err
	close(f.done)
}

// finish releases waiters after result and err were stored under the pipe
// lock. Continuation bodies use this so the fields are never written
// concurrently with Done.
func (f *ReadFuture) finish() {
	close(f.done)
}

// Done returns a channel closed when the read has resolved.
func (f *ReadFuture) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the read resolves and returns its outcome.
func (f *ReadFuture) Result() (ReadResult, error) {
	<-f.done
	return f.result, f.err
}

// ResultContext blocks until the read resolves or ctx is done. A context
// expiry does not cancel the read; use Reader.CancelPendingRead for that.
func (f *ReadFuture) ResultContext(ctx context.Context) (ReadResult, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return ReadResult{}, ctx.Err()
	}
}

// FlushFuture is the handle for an in-flight flush. It resolves
// synchronously unless the pipe is above the pause threshold, in which
// case it resolves when the reader drains below the resume threshold.
type FlushFuture struct {
	done   chan struct{}
	result FlushResult
	err    error
}

func newFlushFuture() *FlushFuture {
	return &FlushFuture{done: make(chan struct{})}
}

func (f *FlushFuture) succeed(result FlushResult) {
	f.result = result
	close(f.done)
}

func (f *FlushFuture) fail(err error) {
	f.err = err
	close(f.done)
}

func (f *FlushFuture) finish() {
	close(f.done)
}

// Done returns a channel closed when the flush has resolved.
func (f *FlushFuture) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the flush resolves and returns its outcome.
func (f *FlushFuture) Result() (FlushResult, error) {
	<-f.done
	return f.result, f.err
}

// ResultContext blocks until the flush resolves or ctx is done. A context
// expiry does not cancel the flush; use Writer.CancelPendingFlush for
// that.
func (f *FlushFuture) ResultContext(ctx context.Context) (FlushResult, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return FlushResult{}, ctx.Err()
	}
}
