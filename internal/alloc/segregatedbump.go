package alloc

import "github.com/wasmheap/liteheap/internal/region"

// segregatedClasses are the four fixed payload size classes of §3/§4.4.
var segregatedClasses = [4]uint32{16, 32, 64, 128}

// classIndexFor maps a request to the smallest class whose payload covers
// both size and align, per §4.4 ("the smallest class whose payload >=
// max(size, align) and whose class size is a multiple of align" — every
// class size here is itself a power of two no larger than 128, so the
// divisibility condition is automatically satisfied once payload >= align).
// Requests with size > 128 or align > 128 bypass bins entirely.
func classIndexFor(size, align uint32) (idx int, ok bool) {
	if size > 128 || align > 128 {
		return 0, false
	}

	need := size
	if align > need {
		need = align
	}

	for i, c := range segregatedClasses {
		if c >= need {
			return i, true
		}
	}

	return 0, false
}

// SegregatedBumpStats is a read-only activity snapshot (SPEC_FULL §3).
type SegregatedBumpStats struct {
	Allocations      uint64
	Deallocations    uint64
	BinHits          uint64
	BumpCount        uint64
	LargeAllocations uint64
	LargeLeaked      uint64
	BinLengths       [4]int
}

// SegregatedBumpAllocator implements §4.4: four fixed size-class bins with
// bump fallback for large allocations. Class bins are singly-linked stacks
// in spec terms; represented here as plain address slices, the same
// out-of-band style used throughout this package (see bumpfreelist.go's
// doc comment) and in the teacher's own size-keyed AllocationPool.
type SegregatedBumpAllocator struct {
	region *region.Region
	bins   [4][]uint32
	stats  SegregatedBumpStats
}

// NewSegregatedBump builds a SegregatedBumpAllocator over host.
func NewSegregatedBump(host region.HostMemory) *SegregatedBumpAllocator {
	return &SegregatedBumpAllocator{region: region.New(host)}
}

// Alloc implements §4.4 Allocate: bin pop on hit, exact-class bump on bin
// miss, and a plain bump for anything too large or too strictly aligned
// for any bin (a zero-size request of that kind gets the base sentinel
// instead, without bumping).
func (a *SegregatedBumpAllocator) Alloc(size, align uint32) (uint32, bool) {
	if err := validate("segregated.Alloc", size, align); err != nil {
		return 0, false
	}

	idx, small := classIndexFor(size, align)
	if !small {
		return a.allocLarge(size, align)
	}

	if n := len(a.bins[idx]); n > 0 {
		addr := a.bins[idx][n-1]
		a.bins[idx] = a.bins[idx][:n-1]
		a.stats.BinHits++
		a.stats.Allocations++
		return addr, true
	}

	classSize := segregatedClasses[idx]
	addr, ok := a.region.Bump(classSize, classSize)
	if !ok {
		return 0, false
	}

	a.stats.BumpCount++
	a.stats.Allocations++
	return addr, true
}

func (a *SegregatedBumpAllocator) allocLarge(size, align uint32) (uint32, bool) {
	if size == 0 {
		return roundUp(a.region.Base(), align), true
	}

	addr, ok := a.region.Bump(size, align)
	if !ok {
		return 0, false
	}

	a.stats.LargeAllocations++
	a.stats.Allocations++
	return addr, true
}

// Dealloc implements §4.4 Free: class-fitting allocations return to their
// bin; large allocations are dropped on the floor and never reclaimed for
// the process lifetime — the deliberate price of the simplest possible
// data structure (§4.4 Rationale).
func (a *SegregatedBumpAllocator) Dealloc(addr, size, align uint32) {
	idx, small := classIndexFor(size, align)
	if !small {
		a.stats.LargeLeaked++
		return
	}

	a.bins[idx] = append(a.bins[idx], addr)
	a.stats.Deallocations++
}

// Realloc never grows a class slot in place — class sizes are fixed, per
// the SPEC_FULL Open Question resolution — except when the old and new
// sizes already map to the same class, in which case the existing slot
// already covers the new size.
func (a *SegregatedBumpAllocator) Realloc(addr, oldSize, align, newSize uint32) (uint32, bool) {
	oldIdx, oldSmall := classIndexFor(oldSize, align)
	newIdx, newSmall := classIndexFor(newSize, align)
	if oldSmall && newSmall && oldIdx == newIdx {
		return addr, true
	}

	newAddr, ok := a.Alloc(newSize, align)
	if !ok {
		return 0, false
	}
	a.Dealloc(addr, oldSize, align)
	return newAddr, true
}

// Stats returns a snapshot of allocator activity.
func (a *SegregatedBumpAllocator) Stats() SegregatedBumpStats {
	s := a.stats
	for i := range a.bins {
		s.BinLengths[i] = len(a.bins[i])
	}
	return s
}
