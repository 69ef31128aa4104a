package contig

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/contig/internal/addr"
)

// Range is a typed view of one range of a Layout. It stays valid until the
// layout is destroyed or released.
type Range[T any] struct {
	base unsafe.Pointer
	off  uintptr
	n    int
}

// Begin returns the address of the first element.
func (r Range[T]) Begin() uintptr { return addr.Of(r.base) + r.off }

// End returns the address one past the last element. It is an address only;
// the range never forms a pointer to it.
func (r Range[T]) End() uintptr {
	var zero T
	return r.Begin() + uintptr(r.n)*unsafe.Sizeof(zero)
}

// Len returns the number of elements, End-Begin in element units.
func (r Range[T]) Len() int { return r.n }

// Slice returns the elements as a slice backed by the block. It is nil for
// an empty range.
func (r Range[T]) Slice() []T { return addr.Slice[T](r.base, r.off, r.n) }

// At returns a pointer to element i. It panics if i is out of range.
func (r Range[T]) At(i int) *T {
	if i < 0 || i >= r.n {
		panic("contig: range index out of bounds")
	}
	return addr.At[T](r.base, r.off, i)
}

// All yields every element pointer in address order.
func (r Range[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < r.n; i++ {
			if !yield(i, addr.At[T](r.base, r.off, i)) {
				return
			}
		}
	}
}

// Get returns the range that s declared in l. It panics if s was not passed
// to the call that built l, or if l was destroyed.
func Get[T any](l *Layout, s *Spec[T]) Range[T] {
	l.panicIfGone()
	i := l.index(s)
	if i < 0 {
		panic(ErrSpecNotInLayout)
	}
	return Range[T]{base: l.block.ptr, off: l.offsets[i], n: s.count}
}

// RangeAt returns range i of l typed as T.
func RangeAt[T any](l *Layout, i int) (Range[T], error) {
	l.panicIfGone()
	if i < 0 || i >= len(l.specs) {
		return Range[T]{}, errors.WithMessagef(ErrSpecNotInLayout, "index %d of %d", i, len(l.specs))
	}
	if want, got := reflect.TypeFor[T](), l.specs[i].ElemType(); want != got {
		return Range[T]{}, errors.WithMessagef(ErrTypeMismatch, "range %d holds %s, not %s", i, got, want)
	}
	return Range[T]{base: l.block.ptr, off: l.offsets[i], n: l.specs[i].Count()}, nil
}

// AdjacentAddress returns the first address at or after end that is aligned
// for T. Composite structures use it to find a region that directly follows
// another one without storing a pointer to it.
func AdjacentAddress[T any](end uintptr) uintptr {
	var zero T
	return end + addr.Pad(end, unsafe.Alignof(zero))
}

// Adjacent returns a pointer to the T region that follows n elements of U
// starting at p, aligned for T. The T region must exist inside the same
// block; Adjacent does not check it.
func Adjacent[T, U any](p *U, n int) *T {
	var (
		t T
		u U
	)
	return (*T)(addr.Adjacent(unsafe.Pointer(p), uintptr(n)*unsafe.Sizeof(u), unsafe.Alignof(t)))
}
