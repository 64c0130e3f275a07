package region

// Region tracks the contiguous byte window [base, end) an allocator owns
// plus the bump cursor top within it, per §3/§4.1. It does not itself
// decide allocation policy — that is the allocator variants' job; Region
// only owns the aligned-bump primitive every variant shares (§4.2).
type Region struct {
	host HostMemory
	base uint32
	end  uint32
	top  uint32
}

// New creates an empty region (top == base == end) backed by host. No
// memory is acquired from host until the first allocation needs it.
func New(host HostMemory) *Region {
	base, end := host.CurrentBounds()
	return &Region{host: host, base: base, end: end, top: base}
}

// Bounds reports the region's current [base, end) and bump cursor.
func (r *Region) Bounds() (base, top, end uint32) {
	return r.base, r.top, r.end
}

// Bump performs the aligned-bump primitive shared by all three variants
// (§4.2): given size and align, it rounds top up to align, reserves size
// bytes, growing the host if necessary, and returns the aligned start. It
// returns ok == false if the end address overflows uint32 or the host
// refuses to grow enough to satisfy the request, in which case top is left
// unchanged.
func (r *Region) Bump(size, align uint32) (start uint32, ok bool) {
	aligned := roundUp(r.top, align)
	newTop := aligned + size

	if newTop < aligned {
		return 0, false // overflow
	}

	if newTop > r.end {
		if !r.growTo(newTop) {
			return 0, false
		}
		// Growth never moves base or re-aligns top, so aligned and newTop
		// stay valid; growTo has already recorded the new end, which may
		// lie past newTop if the host rounded up.
	}

	r.top = newTop
	return aligned, true
}

// Top reports the current bump cursor.
func (r *Region) Top() uint32 {
	return r.top
}

// Base reports the region's base address, a valid never-dereferenced
// address regardless of how much has been acquired from the host — used as
// the zero-size-request sentinel (§9 Open Question resolution).
func (r *Region) Base() uint32 {
	return r.base
}

// ExtendTop grows the bump cursor by delta bytes in place, without
// realigning it, used by in-place Realloc growth of the most recently
// bumped block. It returns ok == false if the host cannot grow enough to
// cover the extension.
func (r *Region) ExtendTop(delta uint32) (ok bool) {
	newTop := r.top + delta
	if newTop < r.top {
		return false
	}
	if newTop > r.end {
		if !r.growTo(newTop) {
			return false
		}
	}
	r.top = newTop
	return true
}

// growTo asks the host for enough additional bytes to cover need,
// retrying once on failure per §4.2 ("ask HostMemory.grow ... retry once").
func (r *Region) growTo(need uint32) bool {
	for attempt := 0; attempt < 2; attempt++ {
		deficit := need - r.end
		newEnd, err := r.host.Grow(deficit)
		if err == nil {
			r.end = newEnd
			if r.end >= need {
				return true
			}
			continue
		}
	}
	return false
}

// roundUp rounds v up to the nearest multiple of align, align a power of
// two.
func roundUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}

// IsPowerOfTwo reports whether align is a nonzero power of two, the
// precondition every variant enforces on alignment requests (§6).
func IsPowerOfTwo(align uint32) bool {
	return align != 0 && align&(align-1) == 0
}
