package scheduling

import (
	"sync"

	"github.com/eapache/queue"
)

// Serial runs all continuations on one dedicated goroutine in submission
// order. It suits event-loop integrations where a side's resumptions must
// never run concurrently with each other, regardless of which goroutine
// triggered the wake.
type Serial struct {
	mu     sync.Mutex
	cond   *sync.Cond
	fifo   *queue.Queue
	closed bool
	done   chan struct{}
}

var _ Scheduler = (*Serial)(nil)

// NewSerial creates a Serial scheduler and starts its goroutine.
func NewSerial() *Serial {
	s := &Serial{
		fifo: queue.New(),
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// Schedule appends the continuation to the FIFO. After Close, the
// continuation runs on the calling goroutine instead, preserving
// exactly-once execution.
func (s *Serial) Schedule(fn func(state any), state any) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn(state)
		return
	}
	s.fifo.Add(continuation{fn: fn, state: state})
	s.mu.Unlock()
	s.cond.Signal()
}

// Close drains the FIFO and stops the goroutine. The returned channel
// closes once the loop has exited.
func (s *Serial) Close() <-chan struct{} {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Signal()
	}
	s.mu.Unlock()
	return s.done
}

// Pending returns the number of queued continuations.
func (s *Serial) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.Length()
}

func (s *Serial) loop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for s.fifo.Length() == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.fifo.Length() == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		c := s.fifo.Remove().(continuation)
		s.mu.Unlock()

		c.fn(c.state)
	}
}
