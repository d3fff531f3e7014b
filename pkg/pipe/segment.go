package pipe

import (
	"github.com/vnykmshr/gopipe/pkg/mempool"
)

// segment is one node of the pipe's buffer chain. It references a pooled
// block plus the consumed and committed offsets within it. Segments form a
// singly linked list ordered oldest-unconsumed-first; only the engine
// mutates links, under its lock.
type segment struct {
	block *mempool.Block

	// start is the offset of the first unconsumed byte in block.Data.
	start int

	// end is the offset one past the last committed byte in block.Data.
	end int

	// runningIndex is the absolute stream index of block.Data[0].
	runningIndex int64

	next *segment
}

func newSegment(block *mempool.Block, runningIndex int64) *segment {
	return &segment{block: block, runningIndex: runningIndex}
}

// capacity returns the block's usable size.
func (s *segment) capacity() int {
	return len(s.block.Data)
}

// availableToWrite returns how many bytes the writer can still commit into
// this segment.
func (s *segment) availableToWrite() int {
	return s.capacity() - s.end
}

// writableSlice returns the uncommitted remainder of the block.
func (s *segment) writableSlice() []byte {
	return s.block.Data[s.end:s.capacity()]
}

// readableSlice returns the committed, unconsumed bytes of this segment.
func (s *segment) readableSlice() []byte {
	return s.block.Data[s.start:s.end]
}

// absStart returns the absolute stream index of the first unconsumed byte.
func (s *segment) absStart() int64 {
	return s.runningIndex + int64(s.start)
}

// absEnd returns the absolute stream index one past the last committed byte.
func (s *segment) absEnd() int64 {
	return s.runningIndex + int64(s.end)
}

// advance commits n more bytes into the segment. Committing past the block
// capacity cannot be recovered from: the caller wrote into memory it was
// never granted.
func (s *segment) advance(n int) {
	if n < 0 || s.end+n > s.capacity() {
		panic("gopipe: advanced past the end of the granted write buffer")
	}
	s.end += n
}

// consumeTo moves the consumed offset up to absolute index consumed, which
// must fall within this segment.
func (s *segment) consumeTo(consumed int64) {
	s.start = int(consumed - s.runningIndex)
}
