package region

import "github.com/tetratelabs/wazero/api"

// wasmPageSize is the fixed WebAssembly linear memory page size (64KiB),
// per the core spec. It is not configurable.
const wasmPageSize = 65536

// WazeroHostMemory wraps the linear memory of an already-instantiated WASM
// guest module (api.Memory, as returned by wazero's api.Module.Memory())
// and presents it as a HostMemory. The allocator never instantiates the
// guest itself — it is handed the memory object by whatever embedded it.
type WazeroHostMemory struct {
	mem       api.Memory
	growCalls uint32 // test-visible; not part of the HostMemory contract
}

// NewWazeroHostMemory builds a HostMemory backed by an already-instantiated
// WASM guest's linear memory.
func NewWazeroHostMemory(mem api.Memory) *WazeroHostMemory {
	return &WazeroHostMemory{mem: mem}
}

// CurrentBounds reports [0, mem.Size()) — WASM linear memory always starts
// at address 0.
func (w *WazeroHostMemory) CurrentBounds() (base, end uint32) {
	return 0, w.mem.Size()
}

// PageSize returns the fixed WASM page size.
func (w *WazeroHostMemory) PageSize() uint32 {
	return wasmPageSize
}

// Grow extends the guest's linear memory by whole pages sufficient to cover
// minBytes beyond the current end.
func (w *WazeroHostMemory) Grow(minBytes uint32) (uint32, error) {
	current := w.mem.Size()
	needed := current + minBytes
	if needed <= current {
		return current, nil
	}

	deltaBytes := needed - current
	deltaPages := (deltaBytes + wasmPageSize - 1) / wasmPageSize

	w.growCalls++
	if _, ok := w.mem.Grow(deltaPages); !ok {
		return 0, growthFailed(minBytes, "guest memory.grow refused %d pages", deltaPages)
	}

	newEnd := w.mem.Size()
	logGrowth("wazero", minBytes, newEnd)
	return newEnd, nil
}
