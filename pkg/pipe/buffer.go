package pipe

// Buffer is a read-only view over the pipe's unconsumed bytes, spanning one
// or more segments without copying. A Buffer is valid until the reader's
// next AdvanceTo call; after that its slices may be reused for new writes.
//
// Positions are absolute stream offsets: Start is the offset of the first
// byte in the view, End is one past the last. Offsets are what AdvanceTo
// consumes, so partially handling a view looks like:
//
//	result, _ := reader.Read(ctx)
//	n := process(result.Buffer)
//	reader.AdvanceToExamined(result.Buffer.Index(n), result.Buffer.End())
type Buffer struct {
	slices [][]byte
	start  int64
	end    int64
}

// Len returns the number of bytes in the view.
func (b Buffer) Len() int64 {
	return b.end - b.start
}

// IsEmpty reports whether the view holds no bytes.
func (b Buffer) IsEmpty() bool {
	return b.end == b.start
}

// Start returns the absolute stream offset of the first byte in the view.
func (b Buffer) Start() int64 {
	return b.start
}

// End returns the absolute stream offset one past the last byte in the view.
func (b Buffer) End() int64 {
	return b.end
}

// Index translates a relative offset within the view into an absolute
// stream offset suitable for AdvanceTo.
func (b Buffer) Index(relative int64) int64 {
	if relative < 0 {
		relative = 0
	}
	if relative > b.Len() {
		relative = b.Len()
	}
	return b.start + relative
}

// First returns the first contiguous chunk of the view, or nil when empty.
// Many consumers only ever need First plus AdvanceTo in a loop.
func (b Buffer) First() []byte {
	if len(b.slices) == 0 {
		return nil
	}
	return b.slices[0]
}

// Slices returns the view's contiguous chunks in stream order. The returned
// slices alias pooled memory; they must not be retained past AdvanceTo.
func (b Buffer) Slices() [][]byte {
	return b.slices
}

// Copy returns the view's bytes as a single freshly allocated slice.
func (b Buffer) Copy() []byte {
	out := make([]byte, 0, b.Len())
	for _, s := range b.slices {
		out = append(out, s...)
	}
	return out
}
