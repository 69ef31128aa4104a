package contig

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/contig/internal/addr"
)

// DefaultChunkSize is the default chunk size for new arena allocators (64 KiB).
const DefaultChunkSize = 1 << 16

// chunk is one slab of arena memory.
type chunk struct {
	buf    []byte  // backing memory, word aligned
	offset uintptr // bump offset within buf
}

// ArenaAllocator is a chunked bump allocator used as a block source.
// Blocks are carved from large chunks; Free only drops the live count and
// memory comes back in bulk with Reset or Release. After Reset, new blocks
// reuse old bytes without zeroing them.
//
// Chunks are plain bytes that the garbage collector does not scan, so
// plans holding pointers are refused with ErrPointerfulBlock. Not
// goroutine-safe; wrap it in a LockedAllocator for shared use.
type ArenaAllocator struct {
	chunks    []chunk
	chunkSize int
	current   int
	live      int
}

// NewArenaAllocator creates an arena with the given chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewArenaAllocator(chunkSize int) *ArenaAllocator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	a := &ArenaAllocator{chunkSize: chunkSize}
	a.grow(chunkSize)
	return a
}

// Allocate carves a block for plan from the current chunk, moving on to a
// spare chunk or growing a new one when it does not fit.
func (a *ArenaAllocator) Allocate(plan Plan) (Block, error) {
	if a.chunks == nil {
		return Block{}, errors.WithMessage(ErrAllocation, "arena released")
	}
	if plan.HasPointers {
		return Block{}, ErrPointerfulBlock
	}
	if plan.Size == 0 {
		a.live++
		return zeroBlock(), nil
	}
	if uint64(plan.Size) > MaxHeapBlock {
		return Block{}, errors.WithMessagef(ErrAllocation, "arena block of %d bytes exceeds %d", plan.Size, MaxHeapBlock)
	}

	// Fast path: current chunk.
	if b, ok := a.carve(&a.chunks[a.current], plan); ok {
		return b, nil
	}
	// Chunks after current are empty after a Reset.
	for a.current+1 < len(a.chunks) {
		a.current++
		if b, ok := a.carve(&a.chunks[a.current], plan); ok {
			return b, nil
		}
	}
	a.grow(int(plan.Size + plan.Align))
	b, _ := a.carve(&a.chunks[a.current], plan)
	return b, nil
}

// Free marks one block as no longer in use. The bytes stay reserved until
// Reset or Release.
func (a *ArenaAllocator) Free(b Block) error {
	if b.owner != nil && b.owner != a {
		return errors.Errorf("contig: block not owned by this arena")
	}
	if a.live > 0 {
		a.live--
	}
	return nil
}

// carve bumps c for a block aligned to plan.Align.
func (a *ArenaAllocator) carve(c *chunk, plan Plan) (Block, bool) {
	base := addr.Of(unsafe.Pointer(unsafe.SliceData(c.buf)))
	off := addr.AlignUp(base+c.offset, plan.Align) - base
	if off+plan.Size > uintptr(len(c.buf)) {
		return Block{}, false
	}
	c.offset = off + plan.Size
	a.live++
	return Block{ptr: unsafe.Pointer(&c.buf[off]), size: plan.Size, owner: a}, true
}

// EnsureCapacity ensures the current chunk has at least n free bytes.
// If not, it grows the arena with a new chunk.
func (a *ArenaAllocator) EnsureCapacity(n int) {
	a.panicIfReleased()
	c := &a.chunks[a.current]
	off := addr.AlignUp(c.offset, 8)
	if uintptr(n)+off > uintptr(len(c.buf)) {
		a.grow(n)
	}
}

// Reset rewinds every chunk for reuse. Blocks handed out earlier must no
// longer be in use.
func (a *ArenaAllocator) Reset() {
	a.panicIfReleased()
	for i := range a.chunks {
		a.chunks[i].offset = 0
	}
	a.current = 0
	a.live = 0
}

// Release drops all chunks and makes the arena unusable.
// Any subsequent Allocate fails and other operations panic.
func (a *ArenaAllocator) Release() {
	a.chunks = nil
	a.current = 0
	a.live = 0
}

// grow appends a new chunk of at least min bytes and makes it current.
func (a *ArenaAllocator) grow(min int) {
	size := a.chunkSize
	if min > size {
		size = min
	}
	words := make([]uint64, (size+7)/8)
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	a.chunks = append(a.chunks, chunk{buf: buf})
	a.current = len(a.chunks) - 1
}

// panicIfReleased panics if the arena has been released.
func (a *ArenaAllocator) panicIfReleased() {
	if a.chunks == nil {
		panic("contig: arena used after Release()")
	}
}
