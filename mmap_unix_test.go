//go:build unix

package contig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestMmapAllocator(t *testing.T) {
	c := NewCountingAllocator(NewMmapAllocator(nil))
	m := NewMaker(WithAllocator(c))

	hdr := Of(1, Aggregate(uint32(7)))
	vals := Of(1000, Generate(func() (float64, error) { return 1.5, nil }))
	l, err := m.Make(hdr, vals)
	require.NoError(t, err)
	assert.Zero(t, l.Block().Addr()%uintptr(unix.Getpagesize()))
	assert.Equal(t, uint32(7), Get(l, hdr).Slice()[0])
	for _, v := range Get(l, vals).Slice() {
		assert.Equal(t, 1.5, v)
	}

	require.NoError(t, l.Destroy())
	assert.Zero(t, c.Metrics().LiveBlocks)
}

func TestMmapAllocatorRefusesPointers(t *testing.T) {
	_, err := NewMaker(WithAllocator(NewMmapAllocator(nil))).Make(N[string](2))
	require.ErrorIs(t, err, ErrPointerfulBlock)
}

func TestMmapAllocatorZeroSize(t *testing.T) {
	a := NewMmapAllocator(nil)
	b, err := a.Allocate(Plan{Align: 1})
	require.NoError(t, err)
	assert.Zero(t, b.Size())
	require.NoError(t, a.Free(b))
}

func TestMmapMemoryIsZeroed(t *testing.T) {
	raw := Of(512, Uninit[uint64]())
	l, err := NewMaker(WithAllocator(NewMmapAllocator(nil))).Make(raw)
	require.NoError(t, err)
	defer l.Destroy()
	for _, v := range Get(l, raw).Slice() {
		require.Zero(t, v)
	}
}
