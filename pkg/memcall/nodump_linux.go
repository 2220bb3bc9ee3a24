//go:build linux

package memcall

import "golang.org/x/sys/unix"

// excludeFromDumps keeps the mapping out of core dumps and zeroes it in
// forked children, so fork-based memory dumpers read nothing. Both flags are
// advisory: MADV_DONTDUMP needs kernel 3.4+, MADV_WIPEONFORK needs 4.14+.
func excludeFromDumps(b []byte) {
	_ = unix.Madvise(b, unix.MADV_DONTDUMP)
	_ = unix.Madvise(b, unix.MADV_WIPEONFORK)
}
