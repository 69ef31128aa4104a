package contig

import (
	"math"
	"math/bits"
	"reflect"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/contig/internal/addr"
)

// Segment is one planned range inside a block.
type Segment struct {
	Type   reflect.Type // element type
	Count  int          // number of elements
	Offset uintptr      // byte offset of the first element from the block start
	Bytes  uintptr      // Count * Type.Size()
}

// Plan is the computed shape of a block: where every range starts and how
// many bytes the whole block needs.
type Plan struct {
	Segments []Segment
	// Size is the exact number of bytes to request from the block source.
	Size uintptr
	// Align is the strictest element alignment in the plan. A block whose
	// start is Align-aligned places every segment at its planned offset.
	Align uintptr
	// HasPointers is set when any non-empty segment holds Go pointers.
	HasPointers bool
}

// Bounds is the address extent of one range: [Begin, End).
type Bounds struct {
	Begin uintptr
	End   uintptr
}

// NewPlan walks specs in declaration order and computes each range's offset
// and the total block size. Each range starts at the next position aligned
// for its element type; offset zero is aligned for every type. Zero-count
// ranges take no bytes but still align the cursor. Each spec may appear
// only once, so Get can name its range unambiguously.
func NewPlan(specs ...ElementSpec) (Plan, error) {
	p := Plan{
		Segments: make([]Segment, len(specs)),
		Align:    1,
	}
	seen := make(map[ElementSpec]int, len(specs))
	var cursor uintptr
	for i, s := range specs {
		if err := s.validate(); err != nil {
			return Plan{}, errors.WithMessagef(err, "range %d (%s)", i, s.ElemType())
		}
		if j, ok := seen[s]; ok {
			return Plan{}, errors.WithMessagef(ErrDuplicateSpec, "ranges %d and %d", j, i)
		}
		seen[s] = i
		t := s.ElemType()
		align := uintptr(t.Align())
		hi, extent := bits.Mul(uint(s.Count()), uint(t.Size()))
		if hi != 0 {
			return Plan{}, errors.WithMessagef(ErrSizeOverflow, "range %d: %d x %s", i, s.Count(), t)
		}
		cursor += addr.Pad(cursor, align)
		start := cursor
		cursor += uintptr(extent)
		if cursor < start || cursor > math.MaxInt {
			return Plan{}, errors.WithMessagef(ErrSizeOverflow, "range %d: %d x %s", i, s.Count(), t)
		}
		p.Segments[i] = Segment{
			Type:   t,
			Count:  s.Count(),
			Offset: start,
			Bytes:  uintptr(extent),
		}
		if align > p.Align {
			p.Align = align
		}
		if s.Count() > 0 && hasPointers(t) {
			p.HasPointers = true
		}
	}
	p.Size = cursor
	return p, nil
}

// PlanSize returns the number of bytes a block for specs needs.
func PlanSize(specs ...ElementSpec) (uintptr, error) {
	p, err := NewPlan(specs...)
	if err != nil {
		return 0, err
	}
	return p.Size, nil
}

// Assign resolves the plan against a concrete block start address. It
// repeats the alignment walk over real addresses and only does arithmetic,
// so the same base always yields the same bounds.
func (p Plan) Assign(base uintptr) []Bounds {
	out := make([]Bounds, len(p.Segments))
	mem := base
	for i, seg := range p.Segments {
		mem += addr.Pad(mem, uintptr(seg.Type.Align()))
		out[i].Begin = mem
		mem += seg.Bytes
		out[i].End = mem
	}
	return out
}

// offsets checks that bounds resolved against base land on the planned
// offsets and returns them.
func (p Plan) offsets(base uintptr) ([]uintptr, error) {
	bounds := p.Assign(base)
	offs := make([]uintptr, len(bounds))
	for i, b := range bounds {
		offs[i] = b.Begin - base
		if offs[i] != p.Segments[i].Offset {
			return nil, errors.WithMessagef(ErrMisaligned,
				"range %d at offset %d, planned %d (base %#x)", i, offs[i], p.Segments[i].Offset, base)
		}
	}
	return offs, nil
}
