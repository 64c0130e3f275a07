// Package globalheap adapts one of the three alloc variants into the
// single process-wide allocator a host environment calls into, the role
// the teacher stack's MemoryManager/AllocatorManager play over their pool
// and buddy-tree allocators.
package globalheap

// Config controls how a GlobalAdapter behaves, mirroring the teacher
// stack's MemoryConfig/DefaultMemoryConfig pattern adapted to this much
// smaller surface.
type Config struct {
	// EnableRealloc toggles whether Realloc is exposed at all. A host that
	// never resizes allocations can disable it to keep the adapter to a
	// pure alloc/dealloc surface and get a clear error instead of a silent
	// alloc+copy+dealloc it never asked for.
	EnableRealloc bool

	// ReserveBytes is a reservation size for an OS-reserved-mapping
	// HostMemory. Nothing in this module reads it: GlobalAdapter and
	// pkg/heap always take a HostMemory built by the caller, and
	// cmd/allocbench sizes its own mapping with a separate constant.
	ReserveBytes uint32
}

// DefaultConfig returns the configuration used when none is supplied:
// realloc enabled, a 16 MiB reservation for an OS-backed host.
func DefaultConfig() Config {
	return Config{
		EnableRealloc: true,
		ReserveBytes:  16 << 20,
	}
}
