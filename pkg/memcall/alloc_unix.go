//go:build !windows

package memcall

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func allocPages(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	return b, nil
}

func lockPages(b []byte) error {
	return unix.Mlock(b)
}

func unlockPages(b []byte) error {
	return unix.Munlock(b)
}

func freePages(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("munmap failed: %w", err)
	}
	return nil
}
