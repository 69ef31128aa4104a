package contig

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLockedAllocator(t *testing.T) {
	s := NewLockedAllocator(nil)
	if s == nil {
		t.Fatal("NewLockedAllocator returned nil")
	}
	if s.a != DefaultAllocator {
		t.Fatal("NewLockedAllocator(nil) should wrap DefaultAllocator")
	}
}

func TestLockedAllocatorOperations(t *testing.T) {
	arena := NewArenaAllocator(1024)
	s := NewLockedAllocator(arena)

	b, err := s.Allocate(bytesPlan(t, 100))
	require.NoError(t, err)
	assert.Equal(t, uintptr(100), b.Size())
	require.NoError(t, s.Free(b))

	s.Do(func(a Allocator) {
		a.(*ArenaAllocator).Reset()
	})
	assert.Zero(t, arena.SizeInUse())
}

func TestLockedArenaConcurrentLayouts(t *testing.T) {
	arena := NewArenaAllocator(4096)
	s := NewLockedAllocator(arena)
	m := NewMaker(WithAllocator(s))

	const numWorkers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, numWorkers)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				hdr := Of(1, Aggregate(uint32(id)))
				vals := Of(16, Aggregate(int64(i)))
				l, err := m.Make(hdr, vals)
				if err != nil {
					errs <- err
					return
				}
				// Each goroutine owns its own layout.
				if Get(l, hdr).Slice()[0] != uint32(id) {
					t.Errorf("worker %d: header corrupted", id)
				}
				for _, v := range Get(l, vals).Slice() {
					if v != int64(i) {
						t.Errorf("worker %d: value %d, want %d", id, v, i)
						break
					}
				}
				if err := l.Destroy(); err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	s.Do(func(Allocator) {
		assert.Zero(t, arena.LiveBlocks())
	})
}
