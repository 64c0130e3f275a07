package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmheap/liteheap/internal/alloc"
	"github.com/wasmheap/liteheap/internal/globalheap"
	"github.com/wasmheap/liteheap/internal/region"
)

func newTestHost(t *testing.T) region.HostMemory {
	t.Helper()
	host, err := region.NewMmapHostMemory(1 << 20)
	require.NoError(t, err)
	return host
}

func TestParseVariant(t *testing.T) {
	for _, s := range []string{"bump", "segregated", "coalescing"} {
		v, ok := ParseVariant(s)
		require.True(t, ok)
		assert.Equal(t, s, v.String())
	}

	_, ok := ParseVariant("nonsense")
	assert.False(t, ok)
}

func TestNewEachVariant(t *testing.T) {
	for _, v := range []Variant{BumpFreeList, SegregatedBump, CoalescingFreeList} {
		h, err := NewDefault(v, newTestHost(t))
		require.NoError(t, err)
		assert.Equal(t, v, h.Variant())

		addr, err := h.Alloc(32, 8)
		require.NoError(t, err)

		h.Dealloc(addr, 32, 8)
	}
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	_, err := NewDefault(Variant(99), newTestHost(t))
	assert.Error(t, err)
}

func TestHeapStatsTypeMatchesVariant(t *testing.T) {
	h, err := NewDefault(BumpFreeList, newTestHost(t))
	require.NoError(t, err)

	_, err = h.Alloc(16, 8)
	require.NoError(t, err)

	stats, ok := h.Stats().(alloc.BumpFreeListStats)
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.Allocations)
}

func TestHeapUsesProvidedConfig(t *testing.T) {
	h, err := New(BumpFreeList, newTestHost(t), globalheap.Config{EnableRealloc: false})
	require.NoError(t, err)

	addr, err := h.Alloc(16, 8)
	require.NoError(t, err)

	_, err = h.Realloc(addr, 16, 8, 32)
	assert.Error(t, err)
}
