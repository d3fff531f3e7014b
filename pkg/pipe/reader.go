package pipe

import "context"

// Reader is the consuming end of a Pipe. All methods must be called from a
// single reader goroutine.
type Reader struct {
	pipe *Pipe
}

// ReadAsync returns a future for the next view over unconsumed bytes. The
// future resolves immediately when unexamined data is buffered or the
// writer has completed; otherwise it resolves on the next flush,
// cancellation, or completion.
//
// The resolved buffer stays valid until the matching AdvanceTo. At most
// one read may be outstanding at a time: a second ReadAsync before
// AdvanceTo fails with ErrInvalidOperation.
func (r *Reader) ReadAsync() *ReadFuture {
	return r.pipe.readAsync()
}

// Read blocks until data is available or ctx is done. Context expiry
// cancels the pending read, so the result carries the Canceled flag along
// with whatever was buffered.
func (r *Reader) Read(ctx context.Context) (ReadResult, error) {
	f := r.ReadAsync()
	select {
	case <-f.done:
	case <-ctx.Done():
		r.CancelPendingRead()
		<-f.done
	}
	return f.result, f.err
}

// AdvanceTo marks everything up to the absolute offset consumed as both
// consumed and examined. Fully consumed segments return to the pool.
func (r *Reader) AdvanceTo(consumed int64) error {
	return r.pipe.advanceReader(consumed, consumed)
}

// AdvanceToExamined marks bytes up to consumed as consumed and bytes up to
// examined as examined. Examining past the consumed offset tells the pipe
// the reader saw the data but needs more before it can make progress, so
// the next read suspends until new bytes arrive rather than spinning on
// the same view. Offsets are absolute; Buffer.Start, Buffer.End and
// Buffer.Index supply them.
func (r *Reader) AdvanceToExamined(consumed, examined int64) error {
	return r.pipe.advanceReader(consumed, examined)
}

// CancelPendingRead wakes the pending read with the Canceled flag. When no
// read is pending the cancellation is remembered and consumed by the next
// read. Safe to call from any goroutine.
func (r *Reader) CancelPendingRead() {
	r.pipe.cancelPendingRead()
}

// Complete marks the reader side finished. A writer suspended on
// backpressure wakes with Completed, or err if non-nil, and further
// flushes report the same. Complete is idempotent.
func (r *Reader) Complete(err error) {
	r.pipe.completeReader(err)
}
