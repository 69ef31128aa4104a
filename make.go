package contig

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Maker builds layouts from one block source.
type Maker struct {
	alloc Allocator
	log   *zap.Logger
}

// NewMaker returns a Maker configured by opts.
func NewMaker(opts ...Option) *Maker {
	c := newConfig(opts)
	return &Maker{alloc: c.alloc, log: c.log}
}

// Make plans a block for specs, allocates it from DefaultAllocator and
// constructs every element. See (*Maker).Make.
func Make(specs ...ElementSpec) (*Layout, error) {
	return NewMaker().Make(specs...)
}

// MakeLayout plans and allocates a block for specs without constructing
// anything. See (*Maker).MakeLayout.
func MakeLayout(specs ...ElementSpec) (*Layout, error) {
	return NewMaker().MakeLayout(specs...)
}

// Make plans a block for specs, allocates it with one request and
// constructs every range in declaration order according to its policy.
//
// Either every element of every range is live when Make returns, or none is:
// if constructing any element fails, the elements already built are
// destroyed in reverse order, the block is freed, and the construction error
// is returned as is. A panic during construction is rolled back the same way
// and then continues. The caller owns the returned layout and must call
// Destroy exactly once.
func (m *Maker) Make(specs ...ElementSpec) (*Layout, error) {
	l, err := m.MakeLayout(specs...)
	if err != nil {
		return nil, err
	}

	armed := true
	defer func() {
		if !armed {
			return
		}
		l.state = StateRolledBack
		if ferr := l.free(); ferr != nil {
			m.log.Error("free after rollback failed", zap.Error(ferr))
		}
	}()

	l.state = StateConstructing
	if err := l.initRanges(); err != nil {
		return nil, err
	}
	armed = false
	l.state = StateLive
	return l, nil
}

// MakeLayout plans a block for specs, allocates it and assigns every range,
// but constructs nothing. The memory holds whatever the block source
// supplied. Free it with Release.
func (m *Maker) MakeLayout(specs ...ElementSpec) (*Layout, error) {
	plan, err := NewPlan(specs...)
	if err != nil {
		return nil, err
	}
	block, err := m.alloc.Allocate(plan)
	if err != nil {
		return nil, errors.Wrapf(err, "contig: allocate %d bytes", plan.Size)
	}
	offsets, err := plan.offsets(block.Addr())
	if err != nil {
		if ferr := m.alloc.Free(block); ferr != nil {
			m.log.Error("free of misaligned block failed", zap.Error(ferr))
		}
		return nil, err
	}
	m.log.Debug("layout planned",
		zap.Uintptr("size", plan.Size),
		zap.Uintptr("align", plan.Align),
		zap.Int("ranges", len(specs)),
		zap.Bool("pointers", plan.HasPointers))
	return &Layout{
		plan:    plan,
		specs:   append([]ElementSpec(nil), specs...),
		offsets: offsets,
		block:   block,
		alloc:   m.alloc,
		log:     m.log,
		state:   StatePlanned,
	}, nil
}

// rangeGuard tracks construction progress of one range. While armed, the
// slots before next are live and are destroyed by rollback.
type rangeGuard struct {
	spec  ElementSpec
	off   uintptr
	next  int
	armed bool
}

func (g *rangeGuard) release() { g.armed = false }

func (g *rangeGuard) rollback(base Block) {
	if g.armed {
		g.spec.destroy(base.ptr, g.off, g.next)
		g.armed = false
	}
}

// initRanges constructs every range in order. On any exit other than full
// success, every armed guard is rolled back, most recent range first.
func (l *Layout) initRanges() error {
	guards := make([]rangeGuard, len(l.specs))
	defer func() {
		for i := len(guards) - 1; i >= 0; i-- {
			guards[i].rollback(l.block)
		}
	}()

	for i, s := range l.specs {
		g := &guards[i]
		g.spec, g.off, g.armed = s, l.offsets[i], true
		if err := s.construct(l.block.ptr, g.off, &g.next); err != nil {
			l.log.Warn("construction failed, rolling back",
				zap.Int("range", i),
				zap.Int("element", g.next),
				zap.Stringer("type", s.ElemType()),
				zap.Stringer("policy", s.Kind()),
				zap.Error(err))
			return err
		}
	}

	for i := range guards {
		guards[i].release()
	}
	return nil
}
