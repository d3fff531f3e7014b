package mempool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
	"github.com/vnykmshr/gopipe/pkg/common/validation"
)

// Block is a unit of pooled memory. Data has capacity equal to the block's
// size class. The pointer is the block's identity; callers must not retain
// Data after Return.
type Block struct {
	Data []byte

	class  int // size-class index, -1 for one-off oversize blocks
	mapped bool
	pooled atomic.Bool
}

// Size returns the usable capacity of the block.
func (b *Block) Size() int {
	return cap(b.Data)
}

// Pool supplies fixed-size reusable memory blocks.
//
// Implementations must be safe for concurrent use from both sides of a pipe,
// and must outlive every block they issued.
type Pool interface {
	// Rent returns a block whose capacity is at least minSize bytes.
	// It fails with errors.ErrAllocation when the pool cannot satisfy the
	// request and with errors.ErrPoolClosed after Close.
	Rent(minSize int) (*Block, error)

	// Return makes the block eligible for reuse. Returning the same block
	// twice without an intervening Rent is a caller bug; the pool ignores
	// the duplicate and records it in Stats().Failures.
	Return(b *Block)

	// Stats returns a snapshot of pool counters.
	Stats() Stats

	// Close releases all idle blocks and stops background maintenance.
	Close() error
}

// Stats is a snapshot of pool activity.
type Stats struct {
	// Rented is the total number of successful Rent calls.
	Rented int64

	// Returned is the total number of accepted Return calls.
	Returned int64

	// Allocated is the number of fresh blocks created.
	Allocated int64

	// Released is the number of blocks handed back to the system.
	Released int64

	// InUse is the number of blocks currently rented out.
	InUse int64

	// Idle is the number of blocks held in freelists.
	Idle int64

	// Failures counts failed Rent calls and rejected double-returns.
	Failures int64
}

// Config holds configuration options for a BlockPool.
type Config struct {
	// MinBlockSize is the smallest size class, in bytes.
	// Default: 4096.
	MinBlockSize int

	// MaxBlockSize is the largest pooled size class, in bytes. Requests
	// beyond it are satisfied with unpooled one-off blocks.
	// Default: 1 MiB.
	MaxBlockSize int

	// MaxBlocks caps the number of outstanding (rented) blocks.
	// Rent fails with errors.ErrAllocation once the cap is reached.
	// 0 means unlimited.
	MaxBlocks int

	// IdlePerClass is how many idle blocks each size class retains.
	// Default: 64.
	IdlePerClass int

	// UseMmap backs blocks with anonymous memory mappings on platforms
	// that support it, keeping pooled memory out of the Go heap.
	UseMmap bool

	// TrimSchedule is a cron expression (e.g. "@every 30s") for releasing
	// idle blocks. Empty disables scheduled trimming.
	TrimSchedule string
}

// DefaultConfig returns a default pool configuration.
func DefaultConfig() Config {
	return Config{
		MinBlockSize: 4096,
		MaxBlockSize: 1 << 20,
		IdlePerClass: 64,
	}
}

// BlockPool is the default Pool implementation: per-size-class freelist
// channels with atomic accounting.
type BlockPool struct {
	config  Config
	classes []int          // size per class, ascending powers of two
	free    []chan *Block  // freelist per class
	closed  atomic.Bool
	cron    *cron.Cron

	rented    atomic.Int64
	returned  atomic.Int64
	allocated atomic.Int64
	released  atomic.Int64
	inUse     atomic.Int64
	failures  atomic.Int64

	mu sync.Mutex // guards inUse cap check against concurrent Rent calls
}

var _ Pool = (*BlockPool)(nil)

// New creates a BlockPool with default configuration.
func New() (*BlockPool, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a BlockPool with the given configuration.
func NewWithConfig(config Config) (*BlockPool, error) {
	if config.MinBlockSize == 0 {
		config.MinBlockSize = 4096
	}
	if config.MaxBlockSize == 0 {
		config.MaxBlockSize = 1 << 20
	}
	if config.IdlePerClass == 0 {
		config.IdlePerClass = 64
	}

	if err := validation.ValidatePositive("mempool", "MinBlockSize", config.MinBlockSize); err != nil {
		return nil, err
	}
	if err := validation.ValidateAtMost("mempool", "MinBlockSize", int64(config.MinBlockSize), "MaxBlockSize", int64(config.MaxBlockSize)); err != nil {
		return nil, err
	}
	if config.MaxBlocks < 0 {
		return nil, gperrors.NewValidationError("mempool", "MaxBlocks", config.MaxBlocks, "cannot be negative").
			WithHint("use 0 for unlimited")
	}

	p := &BlockPool{config: config}
	for size := config.MinBlockSize; ; size *= 2 {
		p.classes = append(p.classes, size)
		p.free = append(p.free, make(chan *Block, config.IdlePerClass))
		if size >= config.MaxBlockSize {
			break
		}
	}

	if config.TrimSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(config.TrimSchedule, p.Trim); err != nil {
			return nil, gperrors.NewValidationError("mempool", "TrimSchedule", config.TrimSchedule, "not a valid cron expression").
				WithHint("use standard cron syntax or @every forms, e.g. \"@every 30s\"")
		}
		c.Start()
		p.cron = c
	}

	return p, nil
}

// classFor returns the index of the smallest class holding minSize bytes,
// or -1 when minSize exceeds the largest pooled class.
func (p *BlockPool) classFor(minSize int) int {
	for i, size := range p.classes {
		if size >= minSize {
			return i
		}
	}
	return -1
}

// Rent returns a block of at least minSize bytes.
func (p *BlockPool) Rent(minSize int) (*Block, error) {
	if p.closed.Load() {
		p.failures.Add(1)
		return nil, fmt.Errorf("mempool: rent %d bytes: %w", minSize, gperrors.ErrPoolClosed)
	}
	if minSize <= 0 {
		minSize = 1
	}

	if p.config.MaxBlocks > 0 {
		p.mu.Lock()
		if p.inUse.Load() >= int64(p.config.MaxBlocks) {
			p.mu.Unlock()
			p.failures.Add(1)
			return nil, fmt.Errorf("mempool: rent %d bytes: %d blocks outstanding: %w",
				minSize, p.config.MaxBlocks, gperrors.ErrAllocation)
		}
		p.inUse.Add(1)
		p.mu.Unlock()
	} else {
		p.inUse.Add(1)
	}

	class := p.classFor(minSize)
	if class >= 0 {
		select {
		case b := <-p.free[class]:
			b.pooled.Store(false)
			p.rented.Add(1)
			return b, nil
		default:
		}
	}

	b, err := p.allocate(minSize, class)
	if err != nil {
		p.inUse.Add(-1)
		p.failures.Add(1)
		return nil, err
	}
	p.rented.Add(1)
	return b, nil
}

// allocate creates a fresh block for the given class (or a one-off block
// when class is -1).
func (p *BlockPool) allocate(minSize, class int) (*Block, error) {
	size := minSize
	if class >= 0 {
		size = p.classes[class]
	}

	data, mapped, err := allocBytes(size, p.config.UseMmap)
	if err != nil {
		return nil, fmt.Errorf("mempool: allocate %d bytes: %w: %v", size, gperrors.ErrAllocation, err)
	}
	p.allocated.Add(1)
	return &Block{Data: data, class: class, mapped: mapped}, nil
}

// Return makes the block eligible for reuse.
func (p *BlockPool) Return(b *Block) {
	if b == nil {
		return
	}
	if !b.pooled.CompareAndSwap(false, true) {
		// Double return. Caller bug; do not corrupt the freelist.
		p.failures.Add(1)
		return
	}

	p.returned.Add(1)
	p.inUse.Add(-1)

	if b.class >= 0 && !p.closed.Load() {
		select {
		case p.free[b.class] <- b:
			return
		default:
		}
	}

	p.release(b)
}

// release hands the block's memory back to the system.
func (p *BlockPool) release(b *Block) {
	freeBytes(b.Data[:cap(b.Data)], b.mapped)
	b.Data = nil
	p.released.Add(1)
}

// Trim releases all idle blocks, shrinking the pool's footprint.
func (p *BlockPool) Trim() {
	for _, ch := range p.free {
	drain:
		for {
			select {
			case b := <-ch:
				p.release(b)
			default:
				break drain
			}
		}
	}
}

// Stats returns a snapshot of pool counters.
func (p *BlockPool) Stats() Stats {
	idle := int64(0)
	for _, ch := range p.free {
		idle += int64(len(ch))
	}
	return Stats{
		Rented:    p.rented.Load(),
		Returned:  p.returned.Load(),
		Allocated: p.allocated.Load(),
		Released:  p.released.Load(),
		InUse:     p.inUse.Load(),
		Idle:      idle,
		Failures:  p.failures.Load(),
	}
}

// Close releases all idle blocks and stops the trim schedule.
// Blocks still rented out remain valid; returning them after Close
// releases them immediately.
func (p *BlockPool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if p.cron != nil {
		p.cron.Stop()
	}
	p.Trim()
	return nil
}
