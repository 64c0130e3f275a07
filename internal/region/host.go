// Package region implements the HostMemory contract and the Region/bump
// primitive shared by every allocator variant.
package region

import "fmt"

// HostMemory is the one-way growth primitive the allocator variants share.
// Implementations back a contiguous window of bytes obtained from some host
// (a WASM guest's linear memory, a reserved OS mapping, ...); growth is
// append-only and never moves previously returned addresses.
type HostMemory interface {
	// CurrentBounds reports the window currently owned, [base, end).
	CurrentBounds() (base, end uint32)

	// Grow extends end by whole pages sufficient to cover minBytes
	// additional bytes beyond the current end. On success it returns the
	// new end; on failure the window is left unchanged.
	Grow(minBytes uint32) (newEnd uint32, err error)

	// PageSize reports the host's page granularity.
	PageSize() uint32
}

// GrowthError is returned by HostMemory.Grow when the host refuses to
// extend the window further.
type GrowthError struct {
	Requested uint32
	Message   string
}

func (e *GrowthError) Error() string {
	return fmt.Sprintf("region: growth of %d bytes failed: %s", e.Requested, e.Message)
}

func growthFailed(requested uint32, format string, args ...interface{}) error {
	return &GrowthError{Requested: requested, Message: fmt.Sprintf(format, args...)}
}

func roundUpPages(minBytes, pageSize uint32) uint32 {
	if minBytes == 0 {
		return 0
	}
	pages := (minBytes + pageSize - 1) / pageSize
	return pages * pageSize
}
