package pipeio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vnykmshr/gopipe/pkg/pipe"
)

// ErrCanceled is returned by adapter operations interrupted through
// CancelPendingRead or CancelPendingFlush before any bytes moved.
var ErrCanceled = errors.New("pipe operation canceled")

// FillFrom pumps src into the pipe writer until src reports io.EOF or
// either side fails. Each iteration rents readSize bytes of buffer space
// (0 uses the pipe's minimum segment size), reads directly into it,
// commits, and flushes, so bytes go from src to the reader without an
// intermediate copy. Backpressure from a slow reader stalls the loop in
// Flush.
//
// The writer is always completed before FillFrom returns: with nil after
// io.EOF, with the terminal error otherwise. Returns the number of bytes
// pumped.
func FillFrom(ctx context.Context, w *pipe.Writer, src io.Reader, readSize int) (int64, error) {
	var total int64
	for {
		buf, err := w.GetBuffer(readSize)
		if err != nil {
			w.Complete(err)
			return total, err
		}
		if readSize > 0 && len(buf) > readSize {
			buf = buf[:readSize]
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if err := w.Advance(n); err != nil {
				w.Complete(err)
				return total, err
			}
			total += int64(n)

			flush, err := w.Flush(ctx)
			switch {
			case err != nil:
				w.Complete(err)
				return total, err
			case flush.Completed:
				// Reader is gone; nothing left to fill.
				w.Complete(nil)
				return total, nil
			case flush.Canceled:
				w.Complete(ErrCanceled)
				return total, ErrCanceled
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				w.Complete(nil)
				return total, nil
			}
			w.Complete(readErr)
			return total, fmt.Errorf("pipeio: fill from source: %w", readErr)
		}
	}
}

// DrainTo pumps the pipe reader into dst until the writer side completes
// or either side fails. Buffer slices are handed to dst as they are,
// segment by segment, without coalescing.
//
// The reader is always completed before DrainTo returns. Returns the
// number of bytes drained.
func DrainTo(ctx context.Context, r *pipe.Reader, dst io.Writer) (int64, error) {
	var total int64
	for {
		result, err := r.Read(ctx)
		if err != nil {
			r.Complete(err)
			return total, err
		}

		consumed := result.Buffer.Start()
		for _, chunk := range result.Buffer.Slices() {
			n, err := dst.Write(chunk)
			consumed += int64(n)
			total += int64(n)
			if err != nil {
				_ = r.AdvanceTo(consumed)
				r.Complete(err)
				return total, fmt.Errorf("pipeio: drain to sink: %w", err)
			}
		}
		if err := r.AdvanceTo(consumed); err != nil {
			r.Complete(err)
			return total, err
		}

		if result.Completed {
			r.Complete(nil)
			return total, nil
		}
		if result.Canceled {
			r.Complete(ErrCanceled)
			return total, ErrCanceled
		}
	}
}

// reader adapts the consuming end of a pipe to io.ReadCloser.
type reader struct {
	ctx context.Context
	r   *pipe.Reader
	eof bool
}

// NewReader wraps the consuming end of a pipe as an io.ReadCloser. Read
// copies out of the pipe's buffers; when src latency matters more than the
// copy, use the Reader façade directly. The adapter owns the reader side:
// Close completes it.
func NewReader(ctx context.Context, r *pipe.Reader) io.ReadCloser {
	return &reader{ctx: ctx, r: r}
}

func (a *reader) Read(p []byte) (int, error) {
	if a.eof {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	result, err := a.r.Read(a.ctx)
	if err != nil {
		return 0, err
	}

	n := int(result.Buffer.Len())
	if n > len(p) {
		n = len(p)
	}
	remaining := p[:n]
	for _, chunk := range result.Buffer.Slices() {
		if len(remaining) == 0 {
			break
		}
		remaining = remaining[copy(remaining, chunk):]
	}

	// Consume only what was copied; unexamined leftovers resolve the next
	// Read immediately.
	if err := a.r.AdvanceTo(result.Buffer.Index(int64(n))); err != nil {
		return n, err
	}

	if result.Completed && int64(n) == result.Buffer.Len() {
		a.eof = true
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	if result.Canceled && n == 0 {
		if a.ctx.Err() != nil {
			return 0, a.ctx.Err()
		}
		return 0, ErrCanceled
	}
	return n, nil
}

func (a *reader) Close() error {
	a.r.Complete(nil)
	return nil
}

// writer adapts the producing end of a pipe to io.WriteCloser.
type writer struct {
	ctx context.Context
	w   *pipe.Writer
}

// NewWriter wraps the producing end of a pipe as an io.WriteCloser. Each
// Write copies into pipe buffers and flushes, blocking under backpressure.
// The adapter owns the writer side: Close completes it.
func NewWriter(ctx context.Context, w *pipe.Writer) io.WriteCloser {
	return &writer{ctx: ctx, w: w}
}

func (a *writer) Write(p []byte) (int, error) {
	n, err := a.w.Write(p)
	if err != nil {
		return n, err
	}
	flush, err := a.w.Flush(a.ctx)
	switch {
	case err != nil:
		return n, err
	case flush.Completed:
		return n, io.ErrClosedPipe
	case flush.Canceled:
		if a.ctx.Err() != nil {
			return n, a.ctx.Err()
		}
		return n, ErrCanceled
	}
	return n, nil
}

func (a *writer) Close() error {
	a.w.Complete(nil)
	return nil
}
