package pipe

import "context"

// Writer is the producing end of a Pipe. All methods must be called from a
// single writer goroutine.
type Writer struct {
	pipe *Pipe
}

// GetBuffer returns writable space of at least one byte, sized by the
// pipe's minimum segment size and sizeHint. Bytes placed in the buffer are
// not part of the stream until Advance commits them.
func (w *Writer) GetBuffer(sizeHint int) ([]byte, error) {
	return w.pipe.getWriteBuffer(sizeHint)
}

// Advance commits the first n bytes of the most recently granted buffer.
// Advancing past the granted capacity panics: the surrounding memory
// belongs to the pool and cannot be silently corrupted.
func (w *Writer) Advance(n int) error {
	return w.pipe.advanceWriter(n)
}

// Write copies p into the pipe through a GetBuffer/Advance loop. It does
// not flush; call FlushAsync or Flush to publish the bytes to the reader.
func (w *Writer) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		buf, err := w.GetBuffer(len(p) - written)
		if err != nil {
			return written, err
		}
		n := copy(buf, p[written:])
		if err := w.Advance(n); err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// FlushAsync publishes all committed bytes to the reader. The returned
// future resolves immediately unless unconsumed bytes reach the pause
// threshold, in which case it resolves when the reader drains back below
// the resume threshold, or on cancellation or reader completion.
//
// At most one flush may be pending at a time; a second FlushAsync before
// the first resolves fails with ErrInvalidOperation.
func (w *Writer) FlushAsync() *FlushFuture {
	return w.pipe.flushAsync()
}

// Flush publishes committed bytes and blocks until the flush resolves or
// ctx is done. Context expiry cancels the pending flush, so a suspended
// writer observes FlushResult.Canceled rather than blocking forever; the
// written data stays buffered.
func (w *Writer) Flush(ctx context.Context) (FlushResult, error) {
	f := w.FlushAsync()
	select {
	case <-f.done:
	case <-ctx.Done():
		w.CancelPendingFlush()
		<-f.done
	}
	return f.result, f.err
}

// CancelPendingFlush wakes the pending flush with the Canceled flag. When
// no flush is pending the cancellation is remembered and consumed by the
// next flush. Safe to call from any goroutine.
func (w *Writer) CancelPendingFlush() {
	w.pipe.cancelPendingFlush()
}

// Complete marks the writer side finished. The reader drains what is
// buffered and then observes Completed, or err if non-nil. Complete is
// idempotent; calls after the first are no-ops.
func (w *Writer) Complete(err error) {
	w.pipe.completeWriter(err)
}
