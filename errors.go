package contig

import "github.com/pkg/errors"

var (
	// ErrAllocation indicates the block source could not supply memory.
	ErrAllocation = errors.New("contig: allocation failed")

	// ErrNegativeCount indicates a spec was declared with a count below zero.
	ErrNegativeCount = errors.New("contig: negative element count")

	// ErrSizeOverflow indicates the planned block size does not fit in an int.
	ErrSizeOverflow = errors.New("contig: block size overflows")

	// ErrUninitNotTrivial indicates Uninit was used for a type that needs destruction.
	ErrUninitNotTrivial = errors.New("contig: uninitialized range of non-trivially destructible type")

	// ErrShortSequence indicates an input sequence ran out before the range was full.
	ErrShortSequence = errors.New("contig: input sequence shorter than element count")

	// ErrMisaligned indicates a block source returned memory that breaks the plan's alignment.
	ErrMisaligned = errors.New("contig: block not aligned as planned")

	// ErrPointerfulBlock indicates a pointer-carrying plan was sent to a source
	// whose memory the garbage collector does not scan.
	ErrPointerfulBlock = errors.New("contig: block source cannot hold Go pointers")

	// ErrDestroyed indicates a layout was destroyed or released twice.
	ErrDestroyed = errors.New("contig: layout already destroyed")

	// ErrNotLive indicates an operation on a layout in the wrong state.
	ErrNotLive = errors.New("contig: layout not live")

	// ErrSpecNotInLayout indicates a spec lookup on a layout it was not part of.
	ErrSpecNotInLayout = errors.New("contig: spec not part of layout")

	// ErrTypeMismatch indicates a typed range lookup with the wrong element type.
	ErrTypeMismatch = errors.New("contig: element type mismatch")

	// ErrDuplicateSpec indicates the same spec was declared twice in one layout.
	ErrDuplicateSpec = errors.New("contig: spec declared twice")

	// ErrShapeLimit indicates a bounded heap allocator has built all the
	// pointer-holding shapes it may.
	ErrShapeLimit = errors.New("contig: heap shape limit reached")

	// ErrMmapUnsupported indicates the platform has no anonymous mappings.
	ErrMmapUnsupported = errors.New("contig: mmap not supported on this platform")
)
