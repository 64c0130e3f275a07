package alloc

import "github.com/wasmheap/liteheap/internal/region"

// coalescingBlock is one free block on the address-sorted free list (§4.5).
// As with the other variants, tracked out-of-band rather than threaded as an
// intrusive list through the managed bytes — see bumpfreelist.go's doc
// comment for why.
type coalescingBlock struct {
	addr uint32
	size uint32
}

// paddedSpan records the real [start, start+size) a live allocation sits
// inside when alignment or an unsplit leftover fragment folded extra bytes
// into it (§4.5 Edge Cases). Keyed by the address Alloc actually returned,
// since that's the only address Dealloc is ever handed back.
type paddedSpan struct {
	start uint32
	size  uint32
}

// CoalescingFreeListStats is a read-only activity snapshot.
type CoalescingFreeListStats struct {
	Allocations    uint64
	Deallocations  uint64
	SplitCount     uint64
	CoalesceCount  uint64
	BumpCount      uint64
	InPlaceGrowths uint64
	FreeListLen    int
}

// CoalescingFreeListAllocator implements §4.5: an address-sorted free list,
// first-fit search, block splitting on allocation, and boundary coalescing
// on free. Falls back to a bump when no free block fits.
type CoalescingFreeListAllocator struct {
	region *region.Region
	free   []coalescingBlock     // invariant: sorted ascending by addr, no two entries touch (P7, P8)
	padded map[uint32]paddedSpan // addr -> real span, only present when it differs from the caller's (size, align)
	stats  CoalescingFreeListStats
}

// NewCoalescingFreeList builds a CoalescingFreeListAllocator over host.
func NewCoalescingFreeList(host region.HostMemory) *CoalescingFreeListAllocator {
	return &CoalescingFreeListAllocator{region: region.New(host)}
}

// Alloc implements §4.5 Allocate: first-fit scan of the sorted free list.
// A candidate block matches if size fits somewhere inside it once its
// interior is aligned up — not only when the block's own address already
// happens to be aligned. Any leading slack before the aligned start and
// any trailing leftover after it become their own free fragments when
// they're large enough to hold a block (>= minPayload); when one is too
// small to split off, it is folded into the returned allocation instead
// (tracked via padded) so those bytes are recovered in full on Dealloc
// rather than leaked.
func (a *CoalescingFreeListAllocator) Alloc(size, align uint32) (uint32, bool) {
	if err := validate("coalescing.Alloc", size, align); err != nil {
		return 0, false
	}

	if size == 0 {
		return roundUp(a.region.Base(), align), true
	}

	need := alignedPayload(size)

	for i, block := range a.free {
		aligned := roundUp(block.addr, align)
		blockEnd := block.addr + block.size
		if aligned+need > blockEnd {
			continue
		}

		a.removeFreeAt(i)

		spanStart := block.addr
		if lead := aligned - block.addr; lead > 0 {
			if lead >= minPayload {
				a.insertSorted(coalescingBlock{addr: block.addr, size: lead})
				a.stats.SplitCount++
				spanStart = aligned
			}
			// else: lead stays folded into spanStart (still block.addr).
		}

		spanEnd := aligned + need
		if trailing := blockEnd - spanEnd; trailing > 0 {
			if trailing >= minPayload {
				a.insertSorted(coalescingBlock{addr: spanEnd, size: trailing})
				a.stats.SplitCount++
			} else {
				spanEnd = blockEnd
			}
		}

		if spanStart != aligned || spanEnd != aligned+need {
			a.recordPadding(aligned, spanStart, spanEnd-spanStart)
		}

		a.stats.Allocations++
		return aligned, true
	}

	addr, ok := a.region.Bump(need, align)
	if !ok {
		return 0, false
	}

	a.stats.BumpCount++
	a.stats.Allocations++
	return addr, true
}

// Dealloc implements §4.5 Free: recover the allocation's real span (which
// may be larger than (size, align) implies, see paddedSpan), insert it in
// address order, then coalesce with whichever immediate neighbor(s) are
// address-adjacent.
func (a *CoalescingFreeListAllocator) Dealloc(addr, size, align uint32) {
	if size == 0 {
		return
	}

	start, span := addr, alignedPayload(size)
	if p, ok := a.padded[addr]; ok {
		start, span = p.start, p.size
		delete(a.padded, addr)
	}

	idx := a.insertSorted(coalescingBlock{addr: start, size: span})
	a.coalesceAt(idx)
	a.stats.Deallocations++
}

// Realloc implements the Open Question resolution for this variant:
// shrinking frees the freed tail (when it's worth tracking); growing
// extends in place only when the immediately adjacent free block can cover
// the growth, splitting its remainder back onto the list; anything else
// falls back to alloc + dealloc. Allocations carrying folded-in padding
// skip the in-place fast paths (their real span isn't addr+oldPayload) and
// always go through the fallback, which consults Dealloc's padding lookup.
func (a *CoalescingFreeListAllocator) Realloc(addr, oldSize, align, newSize uint32) (uint32, bool) {
	if _, padded := a.padded[addr]; !padded {
		oldPayload := alignedPayload(oldSize)
		newPayload := alignedPayload(newSize)

		if newPayload == oldPayload {
			return addr, true
		}

		if newPayload < oldPayload {
			shrink := oldPayload - newPayload
			if shrink >= minPayload {
				a.Dealloc(addr+newPayload, shrink, align)
			}
			return addr, true
		}

		growth := newPayload - oldPayload
		end := addr + oldPayload

		for i, block := range a.free {
			if block.addr != end || block.size < growth {
				continue
			}

			a.removeFreeAt(i)

			remaining := block.size - growth
			if remaining >= minPayload {
				a.insertSorted(coalescingBlock{addr: end + growth, size: remaining})
				a.stats.SplitCount++
			}

			a.stats.InPlaceGrowths++
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
func (a *CoalescingFreeListAllocator) Stats() CoalescingFreeListStats {
	s := a.stats
	s.FreeListLen = len(a.free)
	return s
}

func (a *CoalescingFreeListAllocator) removeFreeAt(i int) {
	a.free = append(a.free[:i], a.free[i+1:]...)
}

// recordPadding remembers that the allocation returned at addr actually
// spans [start, start+size), which differs from what (size, align) alone
// would reconstruct.
func (a *CoalescingFreeListAllocator) recordPadding(addr, start, size uint32) {
	if a.padded == nil {
		a.padded = make(map[uint32]paddedSpan)
	}
	a.padded[addr] = paddedSpan{start: start, size: size}
}

// insertSorted inserts blk keeping the free list sorted ascending by
// address (P8) and returns its resting index.
func (a *CoalescingFreeListAllocator) insertSorted(blk coalescingBlock) int {
	i := 0
	for i < len(a.free) && a.free[i].addr < blk.addr {
		i++
	}

	a.free = append(a.free, coalescingBlock{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = blk
	return i
}

// coalesceAt merges the block at idx with its immediate sorted neighbors
// whenever they are address-adjacent (P7: no two free blocks ever touch).
func (a *CoalescingFreeListAllocator) coalesceAt(idx int) {
	if idx+1 < len(a.free) {
		next := a.free[idx+1]
		if a.free[idx].addr+a.free[idx].size == next.addr {
			a.free[idx].size += next.size
			a.free = append(a.free[:idx+1], a.free[idx+2:]...)
			a.stats.CoalesceCount++
		}
	}

	if idx > 0 {
		prev := a.free[idx-1]
		if prev.addr+prev.size == a.free[idx].addr {
			a.free[idx-1].size += a.free[idx].size
			a.free = append(a.free[:idx], a.free[idx+1:]...)
			a.stats.CoalesceCount++
		}
	}
}
