package globalheap

import "github.com/wasmheap/liteheap/internal/alloc"

// variant is the minimal surface every concrete allocator in this module
// exposes, letting GlobalAdapter stay agnostic to which one it wraps.
type variant interface {
	Alloc(size, align uint32) (uint32, bool)
	Dealloc(addr, size, align uint32)
}

// reallocVariant is implemented by every concrete variant, but kept
// separate so a future variant without a sensible in-place resize can
// still satisfy variant alone.
type reallocVariant interface {
	Realloc(addr, oldSize, align, newSize uint32) (uint32, bool)
}

// GlobalAdapter presents a chosen allocator variant as the single
// process-wide allocator a host environment calls into.
//
// Sync-like claim: the method set below matches what hosts in this
// ecosystem expect from a process-wide allocator, including, in some
// integrations, an implicit assumption of safe concurrent use.
// GlobalAdapter does not provide that. Every variant in internal/alloc is
// single-threaded and unsynchronized by design (§1 Non-goals), and
// GlobalAdapter adds no locking of its own — it is scope-matching the host
// interface, not promising something it doesn't deliver. Callers that need
// concurrent access must serialize their own calls into it.
type GlobalAdapter struct {
	impl variant
	cfg  Config
}

// New wraps v as the process-wide allocator under cfg.
func New(v variant, cfg Config) *GlobalAdapter {
	return &GlobalAdapter{impl: v, cfg: cfg}
}

// Alloc satisfies (size, align) from the wrapped variant. A false result
// from the variant is reclassified into an invalid-argument or
// capacity-exhaustion *alloc.Error by re-running the request-level
// precondition check, so callers get a reason instead of a bare failure.
func (g *GlobalAdapter) Alloc(size, align uint32) (uint32, error) {
	addr, ok := g.impl.Alloc(size, align)
	if ok {
		return addr, nil
	}
	if err := alloc.ValidateRequest("global.Alloc", size, align); err != nil {
		return 0, err
	}
	return 0, alloc.CapacityError("global.Alloc", size, align)
}

// Dealloc releases addr back to the wrapped variant.
func (g *GlobalAdapter) Dealloc(addr, size, align uint32) {
	g.impl.Dealloc(addr, size, align)
}

// Realloc resizes an existing allocation in the wrapped variant, if the
// config allows it.
func (g *GlobalAdapter) Realloc(addr, oldSize, align, newSize uint32) (uint32, error) {
	if !g.cfg.EnableRealloc {
		return 0, &alloc.Error{
			Op:      "global.Realloc",
			Kind:    alloc.KindInvalidArgument,
			Size:    newSize,
			Align:   align,
			Message: "realloc is disabled by configuration",
		}
	}

	r, ok := g.impl.(reallocVariant)
	if !ok {
		return 0, &alloc.Error{
			Op:      "global.Realloc",
			Kind:    alloc.KindContract,
			Size:    newSize,
			Align:   align,
			Message: "wrapped variant does not support realloc",
		}
	}

	newAddr, ok := r.Realloc(addr, oldSize, align, newSize)
	if ok {
		return newAddr, nil
	}
	if err := alloc.ValidateRequest("global.Realloc", newSize, align); err != nil {
		return 0, err
	}
	return 0, alloc.CapacityError("global.Realloc", newSize, align)
}
