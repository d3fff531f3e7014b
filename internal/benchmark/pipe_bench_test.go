package benchmark

import (
	"context"
	"io"
	"testing"

	"github.com/vnykmshr/gopipe/pkg/pipe"
)

// Throughput of a producer/consumer pair moving fixed-size chunks, for
// the pipe and for the two common in-process alternatives.

const chunkSize = 4096

func BenchmarkPipeThroughput(b *testing.B) {
	p := pipe.New()
	ctx := context.Background()
	chunk := make([]byte, chunkSize)
	b.SetBytes(chunkSize)
	b.ResetTimer()

	go func() {
		w := p.Writer()
		for i := 0; i < b.N; i++ {
			if _, err := w.Write(chunk); err != nil {
				w.Complete(err)
				return
			}
			if _, err := w.Flush(ctx); err != nil {
				w.Complete(err)
				return
			}
		}
		w.Complete(nil)
	}()

	r := p.Reader()
	for {
		result, err := r.Read(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if err := r.AdvanceTo(result.Buffer.End()); err != nil {
			b.Fatal(err)
		}
		if result.Completed {
			break
		}
	}
	r.Complete(nil)
}

func BenchmarkIoPipeThroughput(b *testing.B) {
	pr, pw := io.Pipe()
	chunk := make([]byte, chunkSize)
	b.SetBytes(chunkSize)
	b.ResetTimer()

	go func() {
		for i := 0; i < b.N; i++ {
			if _, err := pw.Write(chunk); err != nil {
				return
			}
		}
		pw.Close()
	}()

	buf := make([]byte, chunkSize)
	for {
		if _, err := pr.Read(buf); err != nil {
			break
		}
	}
}

func BenchmarkChannelThroughput(b *testing.B) {
	ch := make(chan []byte, 16)
	chunk := make([]byte, chunkSize)
	b.SetBytes(chunkSize)
	b.ResetTimer()

	go func() {
		for i := 0; i < b.N; i++ {
			// A channel of slices must copy to be safe for reuse.
			c := make([]byte, chunkSize)
			copy(c, chunk)
			ch <- c
		}
		close(ch)
	}()

	for range ch {
	}
}

// The zero-copy read path alone: large writes, single drain.
func BenchmarkPipeLargeTransfer(b *testing.B) {
	ctx := context.Background()
	payload := make([]byte, 1<<20)
	b.SetBytes(1 << 20)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		p := pipe.New()
		w, r := p.Writer(), p.Reader()

		go func() {
			if _, err := w.Write(payload); err != nil {
				w.Complete(err)
				return
			}
			if _, err := w.Flush(ctx); err != nil {
				w.Complete(err)
				return
			}
			w.Complete(nil)
		}()

		for {
			result, err := r.Read(ctx)
			if err != nil {
				b.Fatal(err)
			}
			if err := r.AdvanceTo(result.Buffer.End()); err != nil {
				b.Fatal(err)
			}
			if result.Completed {
				break
			}
		}
		r.Complete(nil)
	}
}
