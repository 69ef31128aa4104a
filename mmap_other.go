//go:build !unix

package contig

import "go.uber.org/zap"

// MmapAllocator is unavailable on this platform; Allocate always fails with
// ErrMmapUnsupported.
type MmapAllocator struct {
	log *zap.Logger
}

// NewMmapAllocator returns an MmapAllocator.
func NewMmapAllocator(log *zap.Logger) *MmapAllocator {
	if log == nil {
		log = Logger()
	}
	return &MmapAllocator{log: log}
}

// Allocate fails with ErrMmapUnsupported, except for empty plans.
func (m *MmapAllocator) Allocate(plan Plan) (Block, error) {
	if plan.Size == 0 {
		return zeroBlock(), nil
	}
	return Block{}, ErrMmapUnsupported
}

// Free does nothing.
func (m *MmapAllocator) Free(Block) error { return nil }
