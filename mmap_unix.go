//go:build unix

package contig

import (
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// MmapAllocator maps every block as its own anonymous private mapping and
// unmaps it on Free. Mappings are page aligned and zero filled. The garbage
// collector does not scan them, so plans holding pointers are refused with
// ErrPointerfulBlock.
type MmapAllocator struct {
	log *zap.Logger
}

// NewMmapAllocator returns an MmapAllocator. A nil logger uses the package
// logger.
func NewMmapAllocator(log *zap.Logger) *MmapAllocator {
	if log == nil {
		log = Logger()
	}
	return &MmapAllocator{log: log}
}

// Allocate maps plan.Size bytes.
func (m *MmapAllocator) Allocate(plan Plan) (Block, error) {
	if plan.HasPointers {
		return Block{}, ErrPointerfulBlock
	}
	if plan.Size == 0 {
		return zeroBlock(), nil
	}
	if plan.Align > uintptr(unix.Getpagesize()) {
		return Block{}, errors.WithMessagef(ErrAllocation, "alignment %d exceeds page size", plan.Align)
	}
	mem, err := unix.Mmap(-1, 0, int(plan.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		m.log.Error("mmap failed", zap.Uintptr("size", plan.Size), zap.Error(err))
		return Block{}, errors.WithMessage(ErrAllocation, err.Error())
	}
	return Block{ptr: unsafe.Pointer(unsafe.SliceData(mem)), size: plan.Size, owner: mem}, nil
}

// Free unmaps b.
func (m *MmapAllocator) Free(b Block) error {
	mem, ok := b.owner.([]byte)
	if !ok {
		// Zero-byte blocks are never mapped.
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		m.log.Error("munmap failed", zap.Uintptr("size", b.size), zap.Error(err))
		return errors.Wrap(err, "contig: munmap")
	}
	return nil
}
