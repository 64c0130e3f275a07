//go:build windows

package region

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// reserveMapping reserves a zero-filled anonymous mapping via
// VirtualAlloc, committing it immediately so growth never has to
// re-protect pages. Mirrors the teacher corpus's unix/Windows split for
// OS-specific memory backends (golang.org/x/sys/windows, as used for
// Windows-specific file and registry handling elsewhere in the corpus).
func reserveMapping(size uint32) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}
