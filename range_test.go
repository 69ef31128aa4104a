package contig

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeAccessors(t *testing.T) {
	ints := Of(3, FromSlice([]int32{7, 8, 9}))
	empty := N[int64](0)
	chars := N[byte](2)
	l, err := Make(ints, empty, chars)
	require.NoError(t, err)
	defer l.Destroy()

	r := Get(l, ints)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, l.Block().Addr(), r.Begin())
	assert.Equal(t, r.Begin()+3*4, r.End())
	assert.Equal(t, uintptr(unsafe.Pointer(r.At(1))), r.Begin()+4)

	var seen []int32
	for i, p := range r.All() {
		assert.Equal(t, r.At(i), p)
		seen = append(seen, *p)
	}
	assert.Equal(t, []int32{7, 8, 9}, seen)

	assert.Panics(t, func() { r.At(3) })
	assert.Panics(t, func() { r.At(-1) })

	e := Get(l, empty)
	assert.Equal(t, e.Begin(), e.End())
	assert.Zero(t, e.Len())
	assert.Nil(t, e.Slice())
	for range e.All() {
		t.Fatal("empty range yielded an element")
	}

	// Bounds agree with the typed ranges.
	bounds := l.Bounds()
	assert.Equal(t, Bounds{r.Begin(), r.End()}, bounds[0])
	assert.Equal(t, Bounds{e.Begin(), e.End()}, bounds[1])
	c := Get(l, chars)
	assert.Equal(t, Bounds{c.Begin(), c.End()}, bounds[2])
}

func TestRangeAllStopsEarly(t *testing.T) {
	vals := Of(5, Aggregate(1))
	l, err := Make(vals)
	require.NoError(t, err)
	defer l.Destroy()

	n := 0
	for range Get(l, vals).All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestRangeAt(t *testing.T) {
	l, err := Make(N[int32](2), Of(1, Aggregate("s")))
	require.NoError(t, err)
	defer l.Destroy()

	r, err := RangeAt[string](l, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, r.Slice())

	_, err = RangeAt[int64](l, 0)
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = RangeAt[int32](l, 2)
	require.ErrorIs(t, err, ErrSpecNotInLayout)
}

func TestAdjacentAddress(t *testing.T) {
	assert.Equal(t, uintptr(0x1008), AdjacentAddress[int64](0x1001))
	assert.Equal(t, uintptr(0x1008), AdjacentAddress[int64](0x1008))
	assert.Equal(t, uintptr(0x1001), AdjacentAddress[byte](0x1001))
	assert.Equal(t, uintptr(0x1004), AdjacentAddress[uint32](0x1002))
	assert.Equal(t, uintptr(0), AdjacentAddress[int64](0))
}

func TestAdjacentLocatesNextRange(t *testing.T) {
	type ctrl struct {
		refs uint16
	}
	hdr := N[ctrl](1)
	size := Of(1, Aggregate(uint64(42)))
	data := N[byte](42)
	l, err := Make(hdr, size, data)
	require.NoError(t, err)
	defer l.Destroy()

	h := Get(l, hdr).At(0)
	sz := Adjacent[uint64](h, 1)
	assert.Equal(t, Get(l, size).At(0), sz)
	assert.Equal(t, uint64(42), *sz)

	// Each range ends where the adjacent address of the next begins.
	assert.Equal(t, Get(l, size).Begin(), AdjacentAddress[uint64](Get(l, hdr).End()))
	assert.Equal(t, Get(l, data).Begin(), AdjacentAddress[byte](Get(l, size).End()))
}
