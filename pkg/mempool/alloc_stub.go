//go:build !linux

package mempool

// allocBytes allocates a block's backing storage. Mmap backing is only
// available on Linux; other platforms fall back to the Go heap.
func allocBytes(size int, _ bool) ([]byte, bool, error) {
	return make([]byte, size), false, nil
}

// freeBytes releases backing storage allocated by allocBytes.
// Heap-backed blocks are reclaimed by the garbage collector.
func freeBytes(_ []byte, _ bool) {}
