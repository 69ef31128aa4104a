// Package contig places several arrays of different element types in one
// contiguous memory block with one lifetime.
//
// # Overview
//
// A caller that needs a header, a size field and a payload array side by
// side can ask for all three at once instead of making three allocations.
// contig computes where each array starts so every one is aligned for its
// element type, requests the block with a single call, builds every element
// according to a per-range policy and later tears the whole block down as
// one unit.
//
// # Basic Usage
//
//	ints := contig.N[int32](2)
//	longs := contig.N[int64](1)
//	chars := contig.Of(8, contig.Aggregate[byte]('x'))
//
//	l, err := contig.Make(ints, longs, chars)
//	if err != nil {
//		return err
//	}
//	defer l.Destroy()
//
//	contig.Get(l, ints).Slice()[0] = 42
//
// # Policies
//
//   - Default: zero value, then Construct if *T implements Constructor
//   - Uninit: slots left as the block source supplied them (pointer-free,
//     destructor-free types only)
//   - WithArgs / Ctor: one constructor call per slot with the same arguments
//   - Aggregate: one value copied into every slot
//   - FromSeq / FromSlice: one value per slot drawn from a sequence
//   - Generate: one generator call per slot
//
// # Failure Handling
//
// Make either returns a layout whose every element is constructed, or an
// error with nothing left behind. When an element fails, the elements
// already built are destroyed from the most recent backwards, the block is
// freed and the element's error is returned unchanged.
//
// # Block Sources
//
// The memory comes from an Allocator:
//
//   - HeapAllocator (default): Go heap, pointer-aware for types that hold
//     pointers
//   - ArenaAllocator: chunked bump allocator for pointer-free layouts
//   - MmapAllocator: one anonymous mapping per block (unix)
//   - LockedAllocator, CountingAllocator: wrappers for sharing and counting
//
// # Important Notes
//
//   - Layouts are not goroutine-safe; callers synchronize element access
//   - Destroy must be called exactly once per layout built by Make
//   - Ranges are only valid until the layout is destroyed
//   - Each new pointer-holding shape on the heap keeps one struct type alive
//     for the life of the process; see HeapAllocator
//   - A spec may appear only once per layout
package contig
