package contig

import (
	"reflect"
	"unsafe"

	"github.com/pavanmanishd/contig/internal/addr"
)

// Destroyer is implemented by element types that must release something
// when their slot is torn down. Destroy runs once per live slot, in reverse
// construction order.
type Destroyer interface {
	Destroy()
}

// ElementSpec is one declared range: an element type, a count and a policy.
// It is implemented only by *Spec[T].
type ElementSpec interface {
	// ElemType reports the element type of the range.
	ElemType() reflect.Type
	// Count reports how many elements the range holds.
	Count() int
	// Kind reports the initialization policy.
	Kind() PolicyKind
	// Trivial reports whether the range can be torn down without visiting
	// its slots.
	Trivial() bool

	validate() error
	construct(base unsafe.Pointer, off uintptr, next *int) error
	destroy(base unsafe.Pointer, off uintptr, n int)
}

// Spec declares a range of count elements of type T built with a policy.
// A Spec is immutable and may be passed to any number of Make calls.
type Spec[T any] struct {
	count     int
	policy    Policy[T]
	typ       reflect.Type
	destroyer bool
	pointers  bool
}

// Of declares count elements of T initialized by policy. A nil policy means
// Default.
func Of[T any](count int, policy Policy[T]) *Spec[T] {
	if policy == nil {
		policy = Default[T]()
	}
	typ := reflect.TypeFor[T]()
	_, destroyer := any((*T)(nil)).(Destroyer)
	return &Spec[T]{
		count:     count,
		policy:    policy,
		typ:       typ,
		destroyer: destroyer,
		pointers:  hasPointers(typ),
	}
}

// N declares count default-constructed elements of T.
func N[T any](count int) *Spec[T] {
	return Of[T](count, nil)
}

func (s *Spec[T]) ElemType() reflect.Type { return s.typ }
func (s *Spec[T]) Count() int             { return s.count }
func (s *Spec[T]) Kind() PolicyKind       { return s.policy.Kind() }
func (s *Spec[T]) Trivial() bool          { return !s.destroyer && !s.pointers }

func (s *Spec[T]) validate() error {
	if s.count < 0 {
		return ErrNegativeCount
	}
	if s.policy.Kind() == KindUninit && !s.Trivial() {
		return ErrUninitNotTrivial
	}
	return nil
}

func (s *Spec[T]) construct(base unsafe.Pointer, off uintptr, next *int) error {
	return s.policy.fill(addr.Slice[T](base, off, s.count), next)
}

// destroy tears down the first n slots, highest address first.
func (s *Spec[T]) destroy(base unsafe.Pointer, off uintptr, n int) {
	if s.Trivial() || n <= 0 {
		return
	}
	slots := addr.Slice[T](base, off, n)
	for i := n - 1; i >= 0; i-- {
		slot := &slots[i]
		if s.destroyer {
			any(slot).(Destroyer).Destroy()
		}
		addr.Zero(slot)
	}
}

// hasPointers reports whether values of t hold anything the garbage
// collector has to trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
