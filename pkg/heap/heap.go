// Package heap is the public entry point to this module: pick a Variant,
// hand it a region.HostMemory, and get back an Allocator.
package heap

import (
	"fmt"

	"github.com/wasmheap/liteheap/internal/alloc"
	"github.com/wasmheap/liteheap/internal/globalheap"
	"github.com/wasmheap/liteheap/internal/region"
)

// Allocator is the capability every Heap exposes: allocate, free, and
// (where the variant and config allow) resize in place. Not safe for
// concurrent use — see globalheap.GlobalAdapter's Sync-like claim doc.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Dealloc(addr, size, align uint32)
	Realloc(addr, oldSize, align, newSize uint32) (uint32, error)
}

// Heap is the public handle onto one of the three allocator variants,
// wired to a HostMemory backend, exposed behind the Allocator interface
// plus a Stats escape hatch for cmd/allocbench.
type Heap struct {
	*globalheap.GlobalAdapter
	variant Variant
	stats   func() any
}

// New builds a Heap of the requested variant over host, under cfg.
func New(v Variant, host region.HostMemory, cfg globalheap.Config) (*Heap, error) {
	switch v {
	case BumpFreeList:
		impl := alloc.NewBumpFreeList(host)
		return &Heap{
			GlobalAdapter: globalheap.New(impl, cfg),
			variant:       v,
			stats:         func() any { return impl.Stats() },
		}, nil

	case SegregatedBump:
		impl := alloc.NewSegregatedBump(host)
		return &Heap{
			GlobalAdapter: globalheap.New(impl, cfg),
			variant:       v,
			stats:         func() any { return impl.Stats() },
		}, nil

	case CoalescingFreeList:
		impl := alloc.NewCoalescingFreeList(host)
		return &Heap{
			GlobalAdapter: globalheap.New(impl, cfg),
			variant:       v,
			stats:         func() any { return impl.Stats() },
		}, nil

	default:
		return nil, fmt.Errorf("heap: unknown variant %d", v)
	}
}

// NewDefault builds a Heap using globalheap.DefaultConfig().
func NewDefault(v Variant, host region.HostMemory) (*Heap, error) {
	return New(v, host, globalheap.DefaultConfig())
}

// Variant reports which allocator algorithm this Heap uses.
func (h *Heap) Variant() Variant {
	return h.variant
}

// Stats returns the wrapped variant's activity snapshot. Callers that know
// which Variant they built type-assert the result, e.g. to
// alloc.BumpFreeListStats for a BumpFreeList heap.
func (h *Heap) Stats() any {
	return h.stats()
}
