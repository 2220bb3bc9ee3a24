//go:build !windows && !linux

package memcall

// excludeFromDumps is a no-op here: the dump-exclusion madvise flags are
// Linux-specific.
func excludeFromDumps(b []byte) {}
