package region

import "sync"

// osPageSize is the granularity used when rounding growth requests on the
// reserved-mapping backend. 4KiB matches every common unix/Windows page
// size; a host that differs can still be served correctly since growth
// always rounds up.
const osPageSize = 4096

// reserveFn is implemented per-OS (host_mmap_unix.go, host_mmap_windows.go)
// and returns a zero-filled anonymous mapping of exactly size bytes.
type reserveFn func(size uint32) ([]byte, error)

// MmapHostMemory backs a Region with a single large anonymous mapping
// reserved up front, for targets with no WASM host at all (the "small
// embedded target" case in §1). Growth advances a committed-length cursor
// within the reservation rather than remapping; requests past the
// reservation fail permanently, same as a host refusing to grow further.
type MmapHostMemory struct {
	mu        sync.Mutex
	mem       []byte // len == reserved capacity
	committed uint32 // bytes of mem considered "grown" so far
	growCalls uint32 // test-visible; not part of the HostMemory contract
}

// NewMmapHostMemory reserves reserveBytes (rounded up to the OS page size)
// of anonymous memory and returns a HostMemory that grows within it.
func NewMmapHostMemory(reserveBytes uint32) (*MmapHostMemory, error) {
	size := roundUpPages(reserveBytes, osPageSize)
	if size == 0 {
		size = osPageSize
	}

	mem, err := reserveMapping(size)
	if err != nil {
		return nil, growthFailed(reserveBytes, "reserve mapping: %v", err)
	}

	return &MmapHostMemory{mem: mem}, nil
}

// CurrentBounds reports [0, committed).
func (m *MmapHostMemory) CurrentBounds() (base, end uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return 0, m.committed
}

// PageSize returns the OS page granularity used for rounding.
func (m *MmapHostMemory) PageSize() uint32 {
	return osPageSize
}

// Grow advances the committed length by whole pages sufficient to cover
// minBytes beyond the current end, failing if that would exceed the
// reservation made at construction time.
func (m *MmapHostMemory) Grow(minBytes uint32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needed := m.committed + minBytes
	if needed <= m.committed {
		return m.committed, nil
	}

	grown := roundUpPages(needed, osPageSize)
	if grown > uint32(len(m.mem)) {
		return 0, growthFailed(minBytes, "reservation of %d bytes exhausted", len(m.mem))
	}

	m.growCalls++
	m.committed = grown
	logGrowth("mmap", minBytes, m.committed)
	return m.committed, nil
}

// Bytes returns the backing slice for the currently committed window.
// Not part of the HostMemory contract — it exists so an embedder can
// actually read and write the bytes an allocator hands out, the way a
// WASM host's linear memory would be dereferenced directly.
func (m *MmapHostMemory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mem[:m.committed]
}
