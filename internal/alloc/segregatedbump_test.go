package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmheap/liteheap/internal/region"
)

func newTestSegregatedBump(t *testing.T) *SegregatedBumpAllocator {
	t.Helper()
	host, err := region.NewMmapHostMemory(1 << 20)
	require.NoError(t, err)
	return NewSegregatedBump(host)
}

func TestClassIndexFor(t *testing.T) {
	cases := []struct {
		size, align uint32
		wantIdx     int
		wantOK      bool
	}{
		{1, 1, 0, true},
		{16, 8, 0, true},
		{17, 8, 1, true},
		{64, 64, 2, true},
		{128, 8, 3, true},
		{129, 8, 0, false},
		{8, 256, 0, false},
	}

	for _, c := range cases {
		idx, ok := classIndexFor(c.size, c.align)
		assert.Equal(t, c.wantOK, ok, "size=%d align=%d", c.size, c.align)
		if c.wantOK {
			assert.Equal(t, c.wantIdx, idx, "size=%d align=%d", c.size, c.align)
		}
	}
}

func TestSegregatedBump_ClassFidelity(t *testing.T) {
	// I7/I8: every allocation drawn from class k sits in a class-k-sized,
	// class-k-aligned slot.
	a := newTestSegregatedBump(t)

	for _, size := range []uint32{1, 16, 30, 64, 100} {
		addr, ok := a.Alloc(size, 8)
		require.True(t, ok)
		idx, ok := classIndexFor(size, 8)
		require.True(t, ok)
		assert.Equal(t, uint32(0), addr%segregatedClasses[idx])
	}
}

func TestSegregatedBump_FreedBlockReturnsToItsOwnBin(t *testing.T) {
	// Scenario 4 of §8: free-then-alloc within a class reuses the slot and
	// never touches the bump cursor.
	a := newTestSegregatedBump(t)

	p1, ok := a.Alloc(20, 8) // class 32
	require.True(t, ok)

	a.Dealloc(p1, 20, 8)
	before := a.Stats().BumpCount

	p2, ok := a.Alloc(20, 8)
	require.True(t, ok)

	assert.Equal(t, p1, p2)
	assert.Equal(t, before, a.Stats().BumpCount)
	assert.Equal(t, uint64(1), a.Stats().BinHits)
}

func TestSegregatedBump_BinsAreIndependent(t *testing.T) {
	a := newTestSegregatedBump(t)

	p16, ok := a.Alloc(10, 8) // class 16
	require.True(t, ok)
	p64, ok := a.Alloc(50, 8) // class 64
	require.True(t, ok)

	a.Dealloc(p16, 10, 8)

	// A class-64 request must not be satisfied from the class-16 bin.
	p2, ok := a.Alloc(50, 8)
	require.True(t, ok)
	assert.NotEqual(t, p16, p2)
	assert.NotEqual(t, p64, p2)
}

func TestSegregatedBump_LargeAllocationsNeverReused(t *testing.T) {
	// Scenario 5 of §8 / P6: an allocation too big for any class bypasses
	// the bins on both alloc and free.
	a := newTestSegregatedBump(t)

	p1, ok := a.Alloc(4096, 8)
	require.True(t, ok)
	a.Dealloc(p1, 4096, 8)

	p2, ok := a.Alloc(4096, 8)
	require.True(t, ok)

	assert.NotEqual(t, p1, p2, "large blocks are never recycled")
	assert.Equal(t, uint64(1), a.Stats().LargeLeaked)
	assert.Equal(t, uint64(2), a.Stats().LargeAllocations)
}

func TestSegregatedBump_NonOverlapAcrossClassesAndLarge(t *testing.T) {
	a := newTestSegregatedBump(t)

	type live struct{ addr, size uint32 }
	var allocs []live

	for _, size := range []uint32{8, 30, 60, 128, 500} {
		addr, ok := a.Alloc(size, 8)
		require.True(t, ok)
		allocs = append(allocs, live{addr, size})
	}

	for i := range allocs {
		for j := range allocs {
			if i == j {
				continue
			}
			aStart, aEnd := allocs[i].addr, allocs[i].addr+allocs[i].size
			bStart, bEnd := allocs[j].addr, allocs[j].addr+allocs[j].size
			assert.False(t, aStart < bEnd && bStart < aEnd, "allocations %d and %d overlap", i, j)
		}
	}
}

func TestSegregatedBump_ReallocWithinSameClassIsNoop(t *testing.T) {
	a := newTestSegregatedBump(t)

	p1, ok := a.Alloc(10, 8) // class 16
	require.True(t, ok)

	p2, ok := a.Realloc(p1, 10, 8, 15) // still class 16
	require.True(t, ok)

	assert.Equal(t, p1, p2)
}

func TestSegregatedBump_ReallocAcrossClassesMoves(t *testing.T) {
	a := newTestSegregatedBump(t)

	p1, ok := a.Alloc(10, 8) // class 16
	require.True(t, ok)

	p2, ok := a.Realloc(p1, 10, 8, 100) // class 128
	require.True(t, ok)

	assert.NotEqual(t, p1, p2)
}

func TestSegregatedBump_RejectsNonPowerOfTwoAlignment(t *testing.T) {
	a := newTestSegregatedBump(t)

	_, ok := a.Alloc(16, 3)
	assert.False(t, ok)
}
