package mempool

import (
	"errors"
	"sync"
	"testing"

	gperrors "github.com/vnykmshr/gopipe/pkg/common/errors"
)

func TestNew(t *testing.T) {
	pool, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	stats := pool.Stats()
	if stats.Rented != 0 || stats.InUse != 0 {
		t.Errorf("fresh pool stats = %+v, want zeroes", stats)
	}
}

func TestNewWithConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"explicit sizes", Config{MinBlockSize: 1024, MaxBlockSize: 8192}, false},
		{"min above max", Config{MinBlockSize: 8192, MaxBlockSize: 4096}, true},
		{"negative min", Config{MinBlockSize: -1}, true},
		{"negative max blocks", Config{MaxBlocks: -1}, true},
		{"bad trim schedule", Config{TrimSchedule: "not a schedule"}, true},
		{"valid trim schedule", Config{TrimSchedule: "@every 1h"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewWithConfig(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, gperrors.ErrInvalidConfiguration) {
					t.Errorf("error = %v, want ErrInvalidConfiguration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_ = pool.Close()
		})
	}
}

func TestRentRoundsUpToClass(t *testing.T) {
	pool, err := NewWithConfig(Config{MinBlockSize: 4096, MaxBlockSize: 1 << 16})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	tests := []struct {
		request  int
		wantSize int
	}{
		{1, 4096},
		{4096, 4096},
		{4097, 8192},
		{10000, 16384},
		{1 << 16, 1 << 16},
	}

	for _, tt := range tests {
		b, err := pool.Rent(tt.request)
		if err != nil {
			t.Fatalf("Rent(%d) error = %v", tt.request, err)
		}
		if b.Size() != tt.wantSize {
			t.Errorf("Rent(%d) size = %d, want %d", tt.request, b.Size(), tt.wantSize)
		}
		pool.Return(b)
	}
}

func TestRentOversizeIsUnpooled(t *testing.T) {
	pool, err := NewWithConfig(Config{MinBlockSize: 4096, MaxBlockSize: 8192})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	b, err := pool.Rent(100000)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}
	if b.Size() < 100000 {
		t.Errorf("oversize block size = %d, want >= 100000", b.Size())
	}

	pool.Return(b)

	stats := pool.Stats()
	if stats.Idle != 0 {
		t.Errorf("oversize block was pooled; Idle = %d, want 0", stats.Idle)
	}
	if stats.Released != 1 {
		t.Errorf("Released = %d, want 1", stats.Released)
	}
}

func TestReuse(t *testing.T) {
	pool, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	b1, err := pool.Rent(128)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}
	pool.Return(b1)

	b2, err := pool.Rent(64)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}
	if b2 != b1 {
		t.Error("expected freelist reuse of the returned block")
	}

	stats := pool.Stats()
	if stats.Allocated != 1 {
		t.Errorf("Allocated = %d, want 1", stats.Allocated)
	}
}

func TestMaxBlocks(t *testing.T) {
	pool, err := NewWithConfig(Config{MaxBlocks: 2})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	b1, err := pool.Rent(16)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}
	b2, err := pool.Rent(16)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}

	if _, err := pool.Rent(16); !errors.Is(err, gperrors.ErrAllocation) {
		t.Errorf("Rent() at cap error = %v, want ErrAllocation", err)
	}

	// The failure is temporary: returning a block clears the condition.
	pool.Return(b1)
	b3, err := pool.Rent(16)
	if err != nil {
		t.Fatalf("Rent() after return error = %v", err)
	}

	pool.Return(b2)
	pool.Return(b3)
}

func TestDoubleReturnIsRejected(t *testing.T) {
	pool, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	b, err := pool.Rent(16)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}

	pool.Return(b)
	pool.Return(b)

	stats := pool.Stats()
	if stats.Returned != 1 {
		t.Errorf("Returned = %d, want 1", stats.Returned)
	}
	if stats.Failures != 1 {
		t.Errorf("Failures = %d, want 1", stats.Failures)
	}
	if stats.InUse != 0 {
		t.Errorf("InUse = %d, want 0", stats.InUse)
	}
}

func TestTrim(t *testing.T) {
	pool, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	blocks := make([]*Block, 4)
	for i := range blocks {
		blocks[i], err = pool.Rent(4096)
		if err != nil {
			t.Fatalf("Rent() error = %v", err)
		}
	}
	for _, b := range blocks {
		pool.Return(b)
	}

	if got := pool.Stats().Idle; got != 4 {
		t.Fatalf("Idle before trim = %d, want 4", got)
	}

	pool.Trim()

	stats := pool.Stats()
	if stats.Idle != 0 {
		t.Errorf("Idle after trim = %d, want 0", stats.Idle)
	}
	if stats.Released != 4 {
		t.Errorf("Released after trim = %d, want 4", stats.Released)
	}
}

func TestClose(t *testing.T) {
	pool, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	b, err := pool.Rent(16)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if _, err := pool.Rent(16); !errors.Is(err, gperrors.ErrPoolClosed) {
		t.Errorf("Rent() after close error = %v, want ErrPoolClosed", err)
	}

	// A block rented before Close is still valid and releasable.
	pool.Return(b)
	if got := pool.Stats().InUse; got != 0 {
		t.Errorf("InUse after final return = %d, want 0", got)
	}
}

func TestConcurrentRentReturn(t *testing.T) {
	pool, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	const perWorker = 200
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b, err := pool.Rent(4096)
				if err != nil {
					t.Errorf("Rent() error = %v", err)
					return
				}
				b.Data[0] = byte(i)
				pool.Return(b)
			}
		}()
	}
	wg.Wait()

	stats := pool.Stats()
	if stats.InUse != 0 {
		t.Errorf("InUse = %d, want 0", stats.InUse)
	}
	if stats.Rented != 8*perWorker {
		t.Errorf("Rented = %d, want %d", stats.Rented, 8*perWorker)
	}
}

func TestMetricsPool(t *testing.T) {
	pool, err := NewWithMetrics("test_pool")
	if err != nil {
		t.Fatalf("NewWithMetrics() error = %v", err)
	}
	defer func() { _ = pool.Close() }()

	b, err := pool.Rent(1024)
	if err != nil {
		t.Fatalf("Rent() error = %v", err)
	}
	pool.Return(b)

	stats := pool.Stats()
	if stats.Rented != 1 || stats.Returned != 1 {
		t.Errorf("stats = %+v, want one rental and one return", stats)
	}
}
