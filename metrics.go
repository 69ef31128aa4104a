package contig

import "sync/atomic"

// SizeInUse returns the number of bytes handed out since the last Reset,
// including alignment padding.
func (a *ArenaAllocator) SizeInUse() int {
	if a.chunks == nil {
		return 0
	}
	sum := 0
	for _, c := range a.chunks {
		sum += int(c.offset)
	}
	return sum
}

// NumChunks returns the number of chunks currently held by the arena.
func (a *ArenaAllocator) NumChunks() int {
	return len(a.chunks)
}

// Capacity returns the total capacity (in bytes) of all chunks.
func (a *ArenaAllocator) Capacity() int {
	sum := 0
	for _, c := range a.chunks {
		sum += len(c.buf)
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *ArenaAllocator) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// ChunkSize returns the default chunk size used by this arena.
func (a *ArenaAllocator) ChunkSize() int {
	return a.chunkSize
}

// LiveBlocks returns the number of blocks allocated and not yet freed since
// the last Reset.
func (a *ArenaAllocator) LiveBlocks() int {
	return a.live
}

// Metrics returns a snapshot of arena statistics.
func (a *ArenaAllocator) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumChunks:   a.NumChunks(),
		ChunkSize:   a.ChunkSize(),
		LiveBlocks:  a.LiveBlocks(),
		Utilization: a.Utilization(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     // Bytes currently handed out
	Capacity    int     // Total capacity in bytes
	NumChunks   int     // Number of chunks
	ChunkSize   int     // Default chunk size
	LiveBlocks  int     // Blocks not yet freed
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
}

// CountingAllocator wraps an Allocator and counts what passes through it.
// Tests use it to check that every block of a layout is freed exactly once.
// It is safe for concurrent use if the wrapped allocator is.
type CountingAllocator struct {
	a         Allocator
	allocs    atomic.Int64
	frees     atomic.Int64
	failures  atomic.Int64
	liveBytes atomic.Int64
	peakBytes atomic.Int64
}

// NewCountingAllocator wraps a. A nil a wraps DefaultAllocator.
func NewCountingAllocator(a Allocator) *CountingAllocator {
	if a == nil {
		a = DefaultAllocator
	}
	return &CountingAllocator{a: a}
}

// Allocate forwards to the wrapped allocator and records the result.
func (c *CountingAllocator) Allocate(plan Plan) (Block, error) {
	b, err := c.a.Allocate(plan)
	if err != nil {
		c.failures.Add(1)
		return b, err
	}
	c.allocs.Add(1)
	live := c.liveBytes.Add(int64(plan.Size))
	for {
		peak := c.peakBytes.Load()
		if live <= peak || c.peakBytes.CompareAndSwap(peak, live) {
			break
		}
	}
	return b, nil
}

// Free forwards to the wrapped allocator and records the release if it
// succeeded.
func (c *CountingAllocator) Free(b Block) error {
	if err := c.a.Free(b); err != nil {
		return err
	}
	c.frees.Add(1)
	c.liveBytes.Add(-int64(b.Size()))
	return nil
}

// Metrics returns a snapshot of the counters.
func (c *CountingAllocator) Metrics() AllocatorMetrics {
	allocs, frees := c.allocs.Load(), c.frees.Load()
	return AllocatorMetrics{
		Allocations: allocs,
		Frees:       frees,
		Failures:    c.failures.Load(),
		LiveBlocks:  allocs - frees,
		LiveBytes:   c.liveBytes.Load(),
		PeakBytes:   c.peakBytes.Load(),
	}
}

// AllocatorMetrics contains the counters of a CountingAllocator.
type AllocatorMetrics struct {
	Allocations int64 // Successful Allocate calls
	Frees       int64 // Successful Free calls
	Failures    int64 // Failed Allocate calls
	LiveBlocks  int64 // Allocations minus frees
	LiveBytes   int64 // Bytes allocated and not freed
	PeakBytes   int64 // Highest LiveBytes seen
}
