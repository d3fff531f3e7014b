//go:build linux

package mempool

import (
	"golang.org/x/sys/unix"
)

// allocBytes allocates a block's backing storage. With useMmap set, the
// block lives in an anonymous private mapping outside the Go heap.
func allocBytes(size int, useMmap bool) ([]byte, bool, error) {
	if useMmap {
		data, err := unix.Mmap(-1, 0, size,
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}
	return make([]byte, size), false, nil
}

// freeBytes releases backing storage allocated by allocBytes.
func freeBytes(data []byte, mapped bool) {
	if mapped && data != nil {
		// Munmap failure here would mean the mapping is already gone;
		// there is nothing useful to do with the error.
		_ = unix.Munmap(data)
	}
}
