package contig

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/contig/internal/addr"
)

// MaxHeapBlock caps the size of a single heap block (1 TiB). Larger requests
// fail with ErrAllocation instead of crashing the runtime.
const MaxHeapBlock uint64 = 1 << 40

// Block is one raw allocation handed out by an Allocator.
type Block struct {
	ptr   unsafe.Pointer
	size  uintptr
	owner any // source-specific handle needed to free the block
}

// NewBlock wraps memory obtained by a custom Allocator. owner is returned
// untouched by Owner and is typically what Free needs to release the memory.
func NewBlock(ptr unsafe.Pointer, size uintptr, owner any) Block {
	return Block{ptr: ptr, size: size, owner: owner}
}

// Pointer returns the block start.
func (b Block) Pointer() unsafe.Pointer { return b.ptr }

// Addr returns the block start as an address.
func (b Block) Addr() uintptr { return addr.Of(b.ptr) }

// Size returns the number of usable bytes, which is the planned size.
func (b Block) Size() uintptr { return b.size }

// Owner returns the handle the source attached to the block.
func (b Block) Owner() any { return b.owner }

// Allocator is the raw memory primitive behind a Layout. Allocate must
// return at least plan.Size bytes starting at an address aligned to
// plan.Align. When plan.HasPointers is set the memory must be visible to the
// garbage collector and zeroed. Free releases a block returned by Allocate.
type Allocator interface {
	Allocate(plan Plan) (Block, error)
	Free(b Block) error
}

// DefaultAllocator is used by Make and by Makers built without WithAllocator.
var DefaultAllocator Allocator = NewHeapAllocator()

// zeroWord backs every zero-byte block.
var zeroWord uint64

func zeroBlock() Block {
	return Block{ptr: unsafe.Pointer(&zeroWord)}
}

// HeapAllocator places blocks on the Go heap. Pointer-free plans get a
// word-aligned buffer. Plans holding pointers get a value of a struct type
// built from the plan's segments, so the collector scans exactly the pointer
// slots. Free is a no-op; the collector reclaims the block once no range
// refers to it.
//
// Every distinct pointer-holding shape (the element types and counts of its
// segments) costs one struct type, and the runtime keeps reflect-built types
// for the life of the process. Repeated shapes reuse their type, but a
// program that builds pointer-holding layouts with ever-changing counts
// grows its heap by a few hundred bytes per new shape, even after the
// layouts are destroyed. Shapes reports the count; NewBoundedHeapAllocator
// caps it.
//
// HeapAllocator is safe to use from multiple goroutines.
type HeapAllocator struct {
	maxShapes int

	mu     sync.Mutex
	shapes map[shapeKey]*shapeNode
	n      int
}

// shapeKey is one segment of a pointer-holding shape.
type shapeKey struct {
	typ   reflect.Type
	count int
}

// shapeNode is a trie node over a shape's segments. typ is set on the node
// that ends a shape already built.
type shapeNode struct {
	typ  reflect.Type
	next map[shapeKey]*shapeNode
}

// NewHeapAllocator returns a HeapAllocator with no limit on shapes.
func NewHeapAllocator() *HeapAllocator { return &HeapAllocator{} }

// NewBoundedHeapAllocator returns a HeapAllocator that builds at most
// maxShapes pointer-holding shapes. Once the limit is reached, plans with a
// new shape fail with ErrShapeLimit; shapes already built are still served.
// A maxShapes of zero or less means no limit.
func NewBoundedHeapAllocator(maxShapes int) *HeapAllocator {
	return &HeapAllocator{maxShapes: maxShapes}
}

// Shapes returns the number of pointer-holding shapes built so far.
func (h *HeapAllocator) Shapes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

// Allocate returns a zeroed block for plan.
func (h *HeapAllocator) Allocate(plan Plan) (Block, error) {
	if plan.Size == 0 {
		return zeroBlock(), nil
	}
	if uint64(plan.Size) > MaxHeapBlock {
		return Block{}, errors.WithMessagef(ErrAllocation, "heap block of %d bytes exceeds %d", plan.Size, MaxHeapBlock)
	}
	if !plan.HasPointers {
		return wordBlock(plan), nil
	}
	st, err := h.shapeType(plan)
	if err != nil {
		return Block{}, err
	}
	v := reflect.New(st)
	return Block{ptr: v.UnsafePointer(), size: plan.Size, owner: st}, nil
}

// Free does nothing; heap blocks are garbage collected.
func (h *HeapAllocator) Free(Block) error { return nil }

// shapeType returns the struct type for plan's shape, building it on first
// use.
func (h *HeapAllocator) shapeType(plan Plan) (reflect.Type, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shapes == nil {
		h.shapes = make(map[shapeKey]*shapeNode)
	}
	level := h.shapes
	var node *shapeNode
	for _, seg := range plan.Segments {
		k := shapeKey{typ: seg.Type, count: seg.Count}
		node = level[k]
		if node == nil {
			node = &shapeNode{}
			level[k] = node
		}
		if node.next == nil {
			node.next = make(map[shapeKey]*shapeNode)
		}
		level = node.next
	}
	if node.typ != nil {
		return node.typ, nil
	}
	if h.maxShapes > 0 && h.n >= h.maxShapes {
		return nil, errors.WithMessagef(ErrShapeLimit, "%d shapes built", h.n)
	}
	st, err := structFor(plan)
	if err != nil {
		return nil, err
	}
	node.typ = st
	h.n++
	return st, nil
}

// wordBlock backs a pointer-free plan with []uint64 so the start is at least
// word aligned, over-allocating when the plan needs more.
func wordBlock(plan Plan) Block {
	need := plan.Size
	if plan.Align > 8 {
		need += plan.Align - 1
	}
	buf := make([]uint64, (need+7)/8)
	base := unsafe.Pointer(&buf[0])
	shift := addr.Pad(addr.Of(base), plan.Align)
	return Block{ptr: unsafe.Add(base, shift), size: plan.Size}
}

// structFor builds a struct whose fields are the plan's segments as
// arrays. Go lays struct fields out with the same alignment walk as NewPlan,
// which the offset check below confirms.
func structFor(plan Plan) (reflect.Type, error) {
	fields := make([]reflect.StructField, len(plan.Segments))
	for i, seg := range plan.Segments {
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("R%d", i),
			Type: reflect.ArrayOf(seg.Count, seg.Type),
		}
	}
	st := reflect.StructOf(fields)
	for i, seg := range plan.Segments {
		if off := st.Field(i).Offset; off != seg.Offset {
			return nil, errors.WithMessagef(ErrMisaligned, "typed block field %d at %d, planned %d", i, off, seg.Offset)
		}
	}
	return st, nil
}
