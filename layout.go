package contig

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// State is the lifecycle stage of a Layout.
type State uint8

const (
	// StatePlanned means the block is allocated and ranges assigned, but
	// nothing is constructed.
	StatePlanned State = iota
	// StateConstructing means ranges are being initialized.
	StateConstructing
	// StateLive means every element of every range is constructed.
	StateLive
	// StateRolledBack means construction failed and the block was freed.
	StateRolledBack
	// StateDestroyed means Destroy tore the layout down.
	StateDestroyed
	// StateReleased means Release freed an unconstructed layout.
	StateReleased
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateConstructing:
		return "constructing"
	case StateLive:
		return "live"
	case StateRolledBack:
		return "rolled-back"
	case StateDestroyed:
		return "destroyed"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Layout owns one block and the ranges carved out of it. Ranges do not own
// memory on their own; the block is freed exactly once, by rollback,
// Destroy or Release.
//
// A Layout is not safe for concurrent use.
type Layout struct {
	plan    Plan
	specs   []ElementSpec
	offsets []uintptr
	block   Block
	alloc   Allocator
	log     *zap.Logger
	state   State
}

// Plan returns the plan the layout was built from.
func (l *Layout) Plan() Plan { return l.plan }

// Size returns the block size in bytes.
func (l *Layout) Size() uintptr { return l.plan.Size }

// Len returns the number of ranges.
func (l *Layout) Len() int { return len(l.specs) }

// State returns the lifecycle stage.
func (l *Layout) State() State { return l.state }

// Block returns the underlying block.
func (l *Layout) Block() Block { return l.block }

// Bounds returns the address extent of every range, in declaration order.
func (l *Layout) Bounds() []Bounds {
	return l.plan.Assign(l.block.Addr())
}

// Destroy tears down a live layout: every range is destroyed in reverse
// declaration order, each from its last element to its first, skipping
// trivially destructible ranges, and then the block is freed.
func (l *Layout) Destroy() error {
	switch l.state {
	case StateLive:
	case StateDestroyed, StateReleased:
		return ErrDestroyed
	default:
		return errors.WithMessagef(ErrNotLive, "destroy in state %s", l.state)
	}
	for i := len(l.specs) - 1; i >= 0; i-- {
		s := l.specs[i]
		s.destroy(l.block.ptr, l.offsets[i], s.Count())
	}
	l.state = StateDestroyed
	l.log.Debug("layout destroyed",
		zap.Uintptr("size", l.plan.Size),
		zap.Int("ranges", len(l.specs)))
	return l.free()
}

// Release frees the block of a layout built by MakeLayout without touching
// its elements. Whatever the caller stored in the ranges is abandoned.
func (l *Layout) Release() error {
	switch l.state {
	case StatePlanned:
	case StateDestroyed, StateReleased:
		return ErrDestroyed
	default:
		return errors.WithMessagef(ErrNotLive, "release in state %s", l.state)
	}
	l.state = StateReleased
	return l.free()
}

func (l *Layout) free() error {
	if err := l.alloc.Free(l.block); err != nil {
		return errors.Wrapf(err, "contig: free %d-byte block", l.plan.Size)
	}
	return nil
}

// index returns the declaration position of s in l.
func (l *Layout) index(s ElementSpec) int {
	for i, x := range l.specs {
		if x == s {
			return i
		}
	}
	return -1
}

func (l *Layout) panicIfGone() {
	switch l.state {
	case StateRolledBack, StateDestroyed, StateReleased:
		panic("contig: use of layout after " + l.state.String())
	}
}
