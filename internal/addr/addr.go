// Package addr is the only place that turns offsets into pointers.
//
// Everything outside this package works in byte offsets relative to a block
// base and asks addr for typed views. Callers guarantee that every offset
// and length they pass lies inside the block the base pointer came from.
package addr

import "unsafe"

// IsPowerOfTwo reports whether x is a non-zero power of two.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}

// AlignUp rounds pos up to the next multiple of align.
// align must be a power of two.
func AlignUp(pos, align uintptr) uintptr {
	mask := align - 1
	return (pos + mask) &^ mask
}

// Pad returns how many bytes must be skipped from pos to reach the next
// position aligned to align. Position zero counts as aligned for every
// alignment.
func Pad(pos, align uintptr) uintptr {
	if pos == 0 {
		return 0
	}
	return AlignUp(pos, align) - pos
}

// Of returns the numeric address of p.
func Of(p unsafe.Pointer) uintptr {
	return uintptr(p)
}

// Adjacent returns the first address aligned to align that follows the
// used bytes starting at p. The result must still lie inside p's block.
func Adjacent(p unsafe.Pointer, used, align uintptr) unsafe.Pointer {
	end := uintptr(p) + used
	return unsafe.Add(p, used+Pad(end, align))
}

// At returns a pointer to element i of the T array starting at base+off.
func At[T any](base unsafe.Pointer, off uintptr, i int) *T {
	var zero T
	return (*T)(unsafe.Add(base, off+uintptr(i)*unsafe.Sizeof(zero)))
}

// Slice returns the n-element T array starting at base+off.
// It returns nil when n is zero so that no pointer is formed at the very
// end of a block.
func Slice[T any](base unsafe.Pointer, off uintptr, n int) []T {
	if n <= 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Add(base, off)), n)
}

// Bytes returns the n bytes starting at base.
func Bytes(base unsafe.Pointer, n int) []byte {
	if n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(base), n)
}

// Place constructs v in the slot. The slot must either be zeroed or hold a
// type without pointers.
func Place[T any](slot *T, v T) {
	*slot = v
}

// Zero overwrites the slot with T's zero value, dropping any references it
// held.
func Zero[T any](slot *T) {
	var zero T
	*slot = zero
}
