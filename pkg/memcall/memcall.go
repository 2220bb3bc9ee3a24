// Package memcall allocates page-aligned memory outside the Go heap for
// holding secret material. Regions are anonymous private mappings: the
// garbage collector never scans or moves them, their base address satisfies
// any Go type's alignment requirement, and on supported platforms they are
// locked against swapping and excluded from core dumps and forked children.
package memcall

import (
	"fmt"
	"os"

	"github.com/Blue-Moss-Labs/Mangle/pkg/wipe"
)

// Region is a page-rounded allocation living outside the Go heap. The
// protections applied at allocation time are best-effort: a failed mlock
// (common under a low RLIMIT_MEMLOCK) leaves the region usable but
// swappable, observable via Locked.
type Region struct {
	mapping []byte // whole mapping, rounded up to page size
	size    int    // requested length
	locked  bool
	freed   bool
}

// Alloc returns a zero-filled region of at least size bytes, page-aligned.
// The mapping is locked into RAM and excluded from dumps where the platform
// allows; both protections degrade silently. Only the mapping itself failing
// is an error.
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("memcall: invalid allocation size %d", size)
	}

	mapping, err := allocPages(roundPage(size))
	if err != nil {
		return nil, fmt.Errorf("memcall: %w", err)
	}

	r := &Region{
		mapping: mapping,
		size:    size,
	}
	r.locked = lockPages(mapping) == nil
	excludeFromDumps(mapping)
	return r, nil
}

// MustAlloc is Alloc except that allocation failure panics. Running out of
// address space for secret storage is not a recoverable condition.
func MustAlloc(size int) *Region {
	r, err := Alloc(size)
	if err != nil {
		panic(err)
	}
	return r
}

// Bytes returns the region's usable bytes, exactly the length requested at
// allocation. Panics if the region has been freed: the backing pages are
// unmapped and any reference to them is a use-after-free.
func (r *Region) Bytes() []byte {
	if r.freed {
		panic("memcall: use of freed region")
	}
	return r.mapping[:r.size]
}

// Len returns the requested allocation length.
func (r *Region) Len() int {
	return r.size
}

// Locked reports whether the region's pages are pinned in RAM.
func (r *Region) Locked() bool {
	return r.locked
}

// Free wipes the whole mapping, unlocks it and returns it to the platform.
// Safe to call more than once; subsequent calls are no-ops.
func (r *Region) Free() error {
	if r.freed {
		return nil
	}

	wipe.Zero(r.mapping)
	if r.locked {
		_ = unlockPages(r.mapping)
	}

	err := freePages(r.mapping)
	r.mapping = nil
	r.locked = false
	r.freed = true
	if err != nil {
		return fmt.Errorf("memcall: %w", err)
	}
	return nil
}

// PageSize returns the platform page size.
func PageSize() int {
	return os.Getpagesize()
}

// roundPage rounds n up to the next multiple of the page size.
func roundPage(n int) int {
	ps := PageSize()
	return (n + ps - 1) &^ (ps - 1)
}
