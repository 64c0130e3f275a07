//go:build unix

package region

import "golang.org/x/sys/unix"

// reserveMapping reserves a zero-filled anonymous mapping via mmap(2).
// Mirrors the teacher corpus's own anonymous-mmap allocator backend
// (cznic/memory's mmap_unix.go), swapped to golang.org/x/sys/unix in place
// of raw syscall numbers.
func reserveMapping(size uint32) ([]byte, error) {
	return unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}
