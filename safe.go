package contig

import "sync"

// LockedAllocator is a mutex-protected wrapper around an Allocator, for
// block sources such as ArenaAllocator that are not goroutine-safe. It only
// serializes allocation and release; the layouts built from it are still
// owned by one goroutine each.
type LockedAllocator struct {
	mu sync.Mutex
	a  Allocator
}

// NewLockedAllocator wraps a. A nil a wraps DefaultAllocator.
func NewLockedAllocator(a Allocator) *LockedAllocator {
	if a == nil {
		a = DefaultAllocator
	}
	return &LockedAllocator{a: a}
}

// Allocate thread-safely allocates a block for plan.
func (s *LockedAllocator) Allocate(plan Plan) (Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(plan)
}

// Free thread-safely releases b.
func (s *LockedAllocator) Free(b Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free(b)
}

// Do runs fn on the wrapped allocator while holding the lock, for
// operations outside the Allocator interface such as ArenaAllocator.Reset.
func (s *LockedAllocator) Do(fn func(Allocator)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.a)
}
