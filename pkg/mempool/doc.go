/*
Package mempool provides a thread-safe pool of fixed-size reusable memory blocks.

The pool hands out blocks in power-of-two size classes and reclaims them for
reuse, so a pipe churning through segments does not churn through the garbage
collector. It is safe for concurrent use: a reader may return blocks while a
writer rents new ones.

# Quick Start

	pool, _ := mempool.New()
	defer pool.Close()

	block, err := pool.Rent(4096)
	if err != nil {
		// pool exhausted or closed
	}
	// ... use block.Data ...
	pool.Return(block)

# Configuration

	pool, err := mempool.NewWithConfig(mempool.Config{
		MinBlockSize: 4 * 1024,     // smallest size class
		MaxBlockSize: 1024 * 1024,  // largest pooled size class
		MaxBlocks:    256,          // cap on outstanding blocks (0 = unlimited)
		IdlePerClass: 64,           // idle blocks retained per size class
		UseMmap:      true,         // anonymous mmap backing on Linux
		TrimSchedule: "@every 30s", // periodically release idle blocks
	})

Requests larger than MaxBlockSize are satisfied with one-off blocks that are
released, not pooled, when returned.

# Allocation Failures

When MaxBlocks outstanding blocks are already rented, Rent fails with
errors.ErrAllocation. The failure is not retried internally; the caller may
try again after blocks are returned.

# Trimming

Bursty writers can leave a deep freelist behind. Set TrimSchedule to a cron
expression (including @every forms) to release idle blocks on a schedule, or
call Trim directly.
*/
package mempool
