package contig

import (
	"iter"
	"slices"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/contig/internal/addr"
)

// PolicyKind names the rule used to produce each element of a range.
type PolicyKind uint8

const (
	// KindDefault stores the zero value and runs Construct when *T implements Constructor.
	KindDefault PolicyKind = iota
	// KindUninit leaves the slots untouched.
	KindUninit
	// KindCtor calls one constructor with the same arguments for every slot.
	KindCtor
	// KindAggregate copies one value into every slot.
	KindAggregate
	// KindSequence draws one value per slot from an input sequence.
	KindSequence
	// KindGenerator calls a generator once per slot.
	KindGenerator
)

func (k PolicyKind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindUninit:
		return "uninit"
	case KindCtor:
		return "ctor"
	case KindAggregate:
		return "aggregate"
	case KindSequence:
		return "sequence"
	case KindGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// Constructor is implemented by element types that finish their own
// default construction. A non-nil error fails the slot.
type Constructor interface {
	Construct() error
}

// Policy produces the initial values of a range of T.
type Policy[T any] interface {
	Kind() PolicyKind
	// fill constructs slots[*next:] in order, advancing *next after each
	// constructed slot. On error, slots[:*next] are live and the rest are not.
	fill(slots []T, next *int) error
}

type defaultPolicy[T any] struct{}

// Default constructs every slot from T's zero value. If *T implements
// Constructor, Construct runs on each slot after it is zeroed.
func Default[T any]() Policy[T] { return defaultPolicy[T]{} }

func (defaultPolicy[T]) Kind() PolicyKind { return KindDefault }

func (defaultPolicy[T]) fill(slots []T, next *int) error {
	var zero T
	for ; *next < len(slots); *next++ {
		slot := &slots[*next]
		addr.Place(slot, zero)
		if c, ok := any(slot).(Constructor); ok {
			if err := c.Construct(); err != nil {
				addr.Zero(slot)
				return err
			}
		}
	}
	return nil
}

type uninitPolicy[T any] struct{}

// Uninit leaves every slot as the block source handed it over. It is only
// accepted for trivially destructible types.
func Uninit[T any]() Policy[T] { return uninitPolicy[T]{} }

func (uninitPolicy[T]) Kind() PolicyKind { return KindUninit }

func (uninitPolicy[T]) fill(slots []T, next *int) error {
	*next = len(slots)
	return nil
}

type ctorPolicy[T, A any] struct {
	ctor func(A) (T, error)
	args A
}

// WithArgs constructs every slot by calling ctor with the same args.
// Use a struct for A to pass several arguments.
func WithArgs[T, A any](ctor func(A) (T, error), args A) Policy[T] {
	return ctorPolicy[T, A]{ctor: ctor, args: args}
}

// Ctor constructs every slot by calling ctor with no arguments.
func Ctor[T any](ctor func() (T, error)) Policy[T] {
	return WithArgs(func(struct{}) (T, error) { return ctor() }, struct{}{})
}

func (ctorPolicy[T, A]) Kind() PolicyKind { return KindCtor }

func (p ctorPolicy[T, A]) fill(slots []T, next *int) error {
	for ; *next < len(slots); *next++ {
		v, err := p.ctor(p.args)
		if err != nil {
			return err
		}
		addr.Place(&slots[*next], v)
	}
	return nil
}

type aggregatePolicy[T any] struct {
	v T
}

// Aggregate initializes every slot member-wise from v.
func Aggregate[T any](v T) Policy[T] { return aggregatePolicy[T]{v: v} }

func (aggregatePolicy[T]) Kind() PolicyKind { return KindAggregate }

func (p aggregatePolicy[T]) fill(slots []T, next *int) error {
	for ; *next < len(slots); *next++ {
		addr.Place(&slots[*next], p.v)
	}
	return nil
}

type seqPolicy[T any] struct {
	seq iter.Seq[T]
}

// FromSeq constructs slot i from the i-th value of seq. The sequence must
// yield at least as many values as the range holds; otherwise construction
// fails with ErrShortSequence.
func FromSeq[T any](seq iter.Seq[T]) Policy[T] { return seqPolicy[T]{seq: seq} }

// FromSlice is FromSeq over the elements of s.
func FromSlice[T any](s []T) Policy[T] { return FromSeq(slices.Values(s)) }

func (seqPolicy[T]) Kind() PolicyKind { return KindSequence }

func (p seqPolicy[T]) fill(slots []T, next *int) error {
	if len(slots) == 0 {
		return nil
	}
	pull, stop := iter.Pull(p.seq)
	defer stop()
	for ; *next < len(slots); *next++ {
		v, ok := pull()
		if !ok {
			return errors.WithMessagef(ErrShortSequence, "got %d of %d values", *next, len(slots))
		}
		addr.Place(&slots[*next], v)
	}
	return nil
}

type genPolicy[T any] struct {
	gen func() (T, error)
}

// Generate constructs every slot from a fresh call to gen.
func Generate[T any](gen func() (T, error)) Policy[T] { return genPolicy[T]{gen: gen} }

func (genPolicy[T]) Kind() PolicyKind { return KindGenerator }

func (p genPolicy[T]) fill(slots []T, next *int) error {
	for ; *next < len(slots); *next++ {
		v, err := p.gen()
		if err != nil {
			return err
		}
		addr.Place(&slots[*next], v)
	}
	return nil
}
