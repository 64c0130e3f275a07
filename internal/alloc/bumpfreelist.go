package alloc

import "github.com/wasmheap/liteheap/internal/region"

// bumpFreeEntry is one released block on the unsorted reuse list (§3 Block
// / BumpFreeList invariants). Tracked as a native Go record keyed by
// address rather than threaded through the managed bytes themselves — the
// same out-of-band bookkeeping the teacher stack's own CustomAllocator uses
// for its AllocationBlock records, which keeps this package free of
// unsafe.Pointer arithmetic into a region it may not even have direct byte
// access to (the WASM-backed case).
type bumpFreeEntry struct {
	addr    uint32
	payload uint32
}

// BumpFreeListStats is a read-only snapshot of allocator activity, the
// ambient instrumentation SPEC_FULL §3 carves out of the statistics
// non-goal.
type BumpFreeListStats struct {
	Allocations   uint64
	Deallocations uint64
	ReuseHits     uint64
	BumpCount     uint64
	FreeListLen   int
}

// BumpFreeListAllocator implements §4.3: a monotonic bump cursor augmented
// with an unsorted reuse list. Not safe for concurrent use — see
// internal/globalheap for the single-threaded contract boundary.
type BumpFreeListAllocator struct {
	region *region.Region
	free   []bumpFreeEntry

	lastBumpAddr  uint32
	lastBumpValid bool

	stats BumpFreeListStats
}

// NewBumpFreeList builds a BumpFreeListAllocator over host. No memory is
// acquired until the first Alloc.
func NewBumpFreeList(host region.HostMemory) *BumpFreeListAllocator {
	return &BumpFreeListAllocator{region: region.New(host)}
}

// Alloc satisfies (size, align) by scanning the reuse list first, falling
// back to an aligned bump on miss (§4.3 Allocate).
func (a *BumpFreeListAllocator) Alloc(size, align uint32) (uint32, bool) {
	if err := validate("bump.Alloc", size, align); err != nil {
		return 0, false
	}

	if size == 0 {
		return roundUp(a.region.Base(), align), true
	}

	if addr, ok := a.takeFromFreeList(size, align); ok {
		a.stats.ReuseHits++
		a.stats.Allocations++
		a.lastBumpValid = false
		return addr, true
	}

	addr, ok := a.region.Bump(size, align)
	if !ok {
		return 0, false
	}

	a.stats.BumpCount++
	a.stats.Allocations++
	a.lastBumpAddr = addr
	a.lastBumpValid = addr+size == a.region.Top()
	return addr, true
}

// takeFromFreeList scans head-to-tail for the first entry whose effective
// payload (after aligning its address up to align) still covers size.
// Bytes skipped by alignment and any trailing slack are discarded, never
// re-split back onto the list — the deliberate simplicity that makes this
// variant "unsorted and small-code" (§4.3).
func (a *BumpFreeListAllocator) takeFromFreeList(size, align uint32) (uint32, bool) {
	for i, entry := range a.free {
		alignedAddr := roundUp(entry.addr, align)
		if alignedAddr+size <= entry.addr+entry.payload {
			a.free = append(a.free[:i], a.free[i+1:]...)
			return alignedAddr, true
		}
	}
	return 0, false
}

// Dealloc pushes the block back onto the reuse list (§4.3 Free). Double-free
// detection is not required and not guaranteed, per §4.3 Error handling.
func (a *BumpFreeListAllocator) Dealloc(addr, size, align uint32) {
	if size == 0 {
		return
	}

	a.free = append(a.free, bumpFreeEntry{addr: addr, payload: alignedPayload(size)})
	a.stats.Deallocations++

	if a.lastBumpValid && addr == a.lastBumpAddr {
		a.lastBumpValid = false
	}
}

// Realloc implements the Open Question resolution for this variant: growth
// is done in place only when addr is the most recently bumped allocation
// and the grown size still fits by extending top; every other case falls
// back to alloc + dealloc (the copy itself is the caller's responsibility,
// since this package never holds a view onto the actual bytes).
func (a *BumpFreeListAllocator) Realloc(addr, oldSize, align, newSize uint32) (uint32, bool) {
	if newSize == oldSize {
		return addr, true
	}

	if newSize > oldSize && a.lastBumpValid && addr == a.lastBumpAddr && addr+oldSize == a.region.Top() {
		if a.region.ExtendTop(newSize - oldSize) {
			return addr, true
		}
	}

	newAddr, ok := a.Alloc(newSize, align)
	if !ok {
		return 0, false
	}
	a.Dealloc(addr, oldSize, align)
	return newAddr, true
}

// Stats returns a snapshot of allocator activity.
func (a *BumpFreeListAllocator) Stats() BumpFreeListStats {
	s := a.stats
	s.FreeListLen = len(a.free)
	return s
}
