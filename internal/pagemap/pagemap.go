//go:build unix

// Package pagemap allocates anonymous page mappings whose individual pages
// can be unmapped or protected, for exercising checked memory access.
package pagemap

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	cachedPageSize uintptr
	pageSizeOnce   sync.Once
)

// PageSize returns the system page size, cached for performance
func PageSize() uintptr {
	pageSizeOnce.Do(func() {
		cachedPageSize = uintptr(unix.Getpagesize())
	})
	return cachedPageSize
}

// Region is a page-aligned mapping of a whole number of pages.
type Region struct {
	base  unsafe.Pointer
	pages int
}

// Map creates a private anonymous read-write mapping of pages pages.
func Map(pages int) (*Region, error) {
	if pages <= 0 {
		return nil, fmt.Errorf("pagemap: map requires at least one page")
	}
	base, err := unix.MmapPtr(-1, 0, nil, uintptr(pages)*PageSize(),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("pagemap: failed to map %d pages: %w", pages, err)
	}
	return &Region{base: base, pages: pages}, nil
}

// MapFile creates a shared read-only mapping of pages pages of f. Pages past
// the end of f raise SIGBUS when touched.
func MapFile(f *os.File, pages int) (*Region, error) {
	if pages <= 0 {
		return nil, fmt.Errorf("pagemap: map requires at least one page")
	}
	base, err := unix.MmapPtr(int(f.Fd()), 0, nil, uintptr(pages)*PageSize(),
		unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("pagemap: failed to map %d pages of %s: %w", pages, f.Name(), err)
	}
	return &Region{base: base, pages: pages}, nil
}

// Base returns the first byte of the region.
func (r *Region) Base() unsafe.Pointer { return r.base }

// Len returns the size of the region in bytes.
func (r *Region) Len() uintptr { return uintptr(r.pages) * PageSize() }

// Page returns the first byte of page i.
func (r *Region) Page(i int) unsafe.Pointer {
	if i < 0 || i > r.pages {
		panic(fmt.Sprintf("pagemap: page %d out of range [0, %d]", i, r.pages))
	}
	return unsafe.Add(r.base, uintptr(i)*PageSize())
}

// Bytes returns page i as a slice. The slice must not be used once the page
// is unmapped or protected.
func (r *Region) Bytes(i int) []byte {
	if i >= r.pages {
		panic(fmt.Sprintf("pagemap: page %d out of range [0, %d)", i, r.pages))
	}
	return unsafe.Slice((*byte)(r.Page(i)), PageSize())
}

// Unmap removes page i from the address space.
func (r *Region) Unmap(i int) error {
	if err := unix.MunmapPtr(r.Page(i), PageSize()); err != nil {
		return fmt.Errorf("pagemap: failed to unmap page %d: %w", i, err)
	}
	return nil
}

// Protect changes the protection of page i, e.g. to unix.PROT_NONE.
func (r *Region) Protect(i int, prot int) error {
	if err := unix.Mprotect(r.Bytes(i), prot); err != nil {
		return fmt.Errorf("pagemap: failed to protect page %d: %w", i, err)
	}
	return nil
}

// Close unmaps the whole region. Pages already unmapped are ignored.
func (r *Region) Close() error {
	if r == nil || r.base == nil {
		return nil
	}
	if err := unix.MunmapPtr(r.base, r.Len()); err != nil {
		return fmt.Errorf("pagemap: failed to unmap region: %w", err)
	}
	r.base = nil
	return nil
}

// Boundary returns a pointer valid bytes before the start of page i, so
// that the first valid bytes read from it are accessible when page i is
// not.
func (r *Region) Boundary(i int, valid uintptr) unsafe.Pointer {
	if valid > uintptr(i)*PageSize() {
		panic(fmt.Sprintf("pagemap: %d valid bytes do not fit before page %d", valid, i))
	}
	return unsafe.Add(r.Page(i), -int(valid))
}
