package heap

// Variant selects which of the three allocator algorithms a Heap uses.
type Variant int

const (
	// BumpFreeList is §4.3: a bump cursor plus an unsorted reuse list.
	BumpFreeList Variant = iota
	// SegregatedBump is §4.4: fixed size-class bins with bump fallback.
	SegregatedBump
	// CoalescingFreeList is §4.5: an address-sorted, coalescing free list.
	CoalescingFreeList
)

// String renders the variant the way cmd/allocbench's --variant flag and
// JSON output expect it.
func (v Variant) String() string {
	switch v {
	case BumpFreeList:
		return "bump"
	case SegregatedBump:
		return "segregated"
	case CoalescingFreeList:
		return "coalescing"
	default:
		return "unknown"
	}
}

// ParseVariant maps a --variant flag value to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "bump":
		return BumpFreeList, true
	case "segregated":
		return SegregatedBump, true
	case "coalescing":
		return CoalescingFreeList, true
	default:
		return 0, false
	}
}
