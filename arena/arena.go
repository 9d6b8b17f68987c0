// Package arena provides fixed-size, fixed-alignment memory regions backed
// by anonymous mmap, used to give every Immix block a stable, page-backed
// address that satisfies the "P & ~(align-1) recovers the block base"
// invariant without Go's allocator (which gives no portable aligned-alloc).
//
// This mirrors the teacher's shm package, which mmaps a named /dev/shm file
// and reinterprets the mapping as a fixed-layout struct; here the mapping is
// anonymous and owned rather than named and shared, but the underlying
// "mmap, then compute a stable base address" idiom is the same.
package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Region is a single aligned mmap'd slab. Its Base is used as the numeric
// identity for every object address carved out of the owning block; the
// slab's bytes themselves are not used to store Go values (see DESIGN.md —
// Go cannot safely place pointer-containing values in GC-opaque memory).
type Region struct {
	raw   []byte
	Base  uintptr
	Size  uintptr
	Align uintptr
}

// New mmaps an anonymous, private region of the given size aligned to
// align bytes. It over-allocates by one alignment unit and sets Base to the
// first align-aligned address inside the mapping; the unused slop on either
// side stays mapped until Close unmaps the whole mapping.
func New(size, align uintptr) (*Region, error) {
	if align == 0 || align&(align-1) != 0 {
		return nil, fmt.Errorf("arena: align %d is not a power of two", align)
	}

	raw, err := unix.Mmap(-1, 0, int(size+align), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap: %w", err)
	}

	base := alignUp(addrOf(raw), align)
	return &Region{raw: raw, Base: base, Size: size, Align: align}, nil
}

// Close unmaps the backing region.
func (r *Region) Close() error {
	return unix.Munmap(r.raw)
}

// Contains reports whether addr falls within [Base, Base+Size).
func (r *Region) Contains(addr uintptr) bool {
	return addr >= r.Base && addr < r.Base+r.Size
}

func alignUp(addr, align uintptr) uintptr {
	mask := align - 1
	return (addr + mask) &^ mask
}
