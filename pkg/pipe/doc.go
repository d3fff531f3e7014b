/*
Package pipe provides a single-producer single-consumer byte pipe with
pooled segment storage, pause/resume flow control, and continuation-based
suspension instead of per-operation goroutine parking.

A Pipe exposes two façades. The Writer rents buffer space directly from the
pipe, commits bytes in place, and flushes to publish them. The Reader
receives zero-copy views over everything unconsumed and tells the pipe how
much it consumed and how much it merely examined. Data moves from writer to
reader without intermediate copies: the writer fills the same pooled blocks
the reader later slices.

# Quick Start

	p := pipe.New()

	go func() {
		w := p.Writer()
		buf, _ := w.GetBuffer(0)
		n := copy(buf, "hello world")
		w.Advance(n)
		w.Flush(context.Background())
		w.Complete(nil)
	}()

	r := p.Reader()
	for {
		result, err := r.Read(context.Background())
		if err != nil {
			break
		}
		process(result.Buffer)
		r.AdvanceTo(result.Buffer.End())
		if result.Completed {
			break
		}
	}
	r.Complete(nil)

# Flow Control

Flushing while unconsumed bytes are at or above PauseWriterThreshold
suspends the flush until the reader drains down to ResumeWriterThreshold.
The gap between the thresholds keeps a matched producer and consumer from
oscillating between paused and resumed on every operation. A suspended
flush holds no goroutine: it resolves through the writer's Scheduler when
the reader catches up.

# Examined Positions

AdvanceToExamined lets a protocol parser retain partial frames: bytes up to
the consumed offset are released, bytes up to the examined offset stay
buffered, and the next read suspends until bytes beyond the examined offset
arrive. Plain AdvanceTo marks everything it consumed as examined.

# Contract

One writer goroutine and one reader goroutine. At most one read and one
flush may be pending at a time; violations fail with ErrInvalidOperation
rather than queueing. Completion is idempotent on both sides, and once both
sides complete all segments return to the pool. A fully completed pipe can
be reused via Reset.
*/
package pipe
